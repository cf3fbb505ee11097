package normalize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Pão", "pao"},
		{"Água de Côco", "agua coco"},
		{"Leite 1L", "leite 1000ml"},
		{"Leite 1 l", "leite 1000ml"},
		{"Refrigerante 2L", "refrigerante 2000ml"},
		{"Arroz 5kg", "arroz 5000g"},
		{"Arroz 5 kg", "arroz 5000g"},
		{"Suco 3 litros", "suco 3000ml"},
		{"Suco 1 litro", "suco 1000ml"},
		{"Refri Coca 2l", "refrigerante coca-cola 2000ml"},
		{"  Feijão   DO  Sul  ", "feijao sul"},
		{"de da do", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_LiterShorthandIsNarrow(t *testing.T) {
	// somente 1l e 2l são convertidos
	assert.Equal(t, "agua 5l", Normalize("Água 5L"))
	assert.Equal(t, "agua 10 l", Normalize("Água 10 L"))
}

func TestNormalize_Idempotent(t *testing.T) {
	samples := []string{
		"Leite Integral Itambé 1L",
		"Refri Coca 2L",
		"coca-cola",
		"refrigerante",
		"Água de Côco 1 litro",
		"Arroz Tio João 5 kg",
		"Café do Ponto 500g",
		"Sabão em pó Omo 1,5 kg",
		"Ção ÇÃO ção",
		"  espaços   extras  ",
		"o a de",
		"2 L",
		"1L 2L 3L",
	}

	for _, s := range samples {
		once := Normalize(s)
		assert.Equal(t, once, Normalize(once), "input %q", s)
	}
}

func TestNormalize_HugeQuantityUnchanged(t *testing.T) {
	out := Normalize("Arroz 9223372036854776kg")
	assert.Equal(t, "arroz 9223372036854776kg", out)
	assert.Equal(t, out, Normalize(out))
	assert.Equal(t, "suco 99999999999999999999 litros", Normalize("Suco 99999999999999999999 litros"))
}

func TestNormalize_UnitsConverge(t *testing.T) {
	assert.Equal(t, Normalize("Leite 1000ml"), Normalize("Leite 1L"))
}

func TestNormalize_RemovesStopwords(t *testing.T) {
	out := Normalize("Água de Côco")
	for _, w := range strings.Fields(out) {
		assert.NotEqual(t, "de", w)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("leite", "leite"))
	assert.Equal(t, 0.0, Similarity("abc", "xyz"))
	assert.InDelta(t, 0.8, Similarity("leite", "leito"), 1e-9)

	s := Similarity("arroz", "arroz integral")
	assert.Greater(t, s, 0.0)
	assert.Less(t, s, 1.0)
}
