package alerts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bot-mercado/internal/models"
)

func best(price string) *models.Offer {
	return &models.Offer{ID: "o-" + price, Price: decimal.RequireFromString(price)}
}

func newAlert() models.Alert {
	return models.Alert{
		ID:          "a1",
		UserID:      "u1",
		ProductID:   "p1",
		TargetPrice: decimal.RequireFromString("10.00"),
		Active:      true,
	}
}

func TestEvaluate_Hysteresis(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	a := newAlert()
	require.True(t, a.Pending())

	r := Evaluate(a, best("9.50"), t0)
	assert.True(t, r.ShouldNotify)
	require.NotNil(t, r.Alert.TriggeredAt)
	assert.Equal(t, t0, *r.Alert.TriggeredAt)
	assert.Equal(t, t0, *r.Alert.LastChecked)
	assert.True(t, r.Alert.Active)
	assert.False(t, r.Alert.Pending())

	t1 := t0.Add(time.Hour)
	r = Evaluate(r.Alert, best("9.50"), t1)
	assert.False(t, r.ShouldNotify)
	assert.Equal(t, t1, *r.Alert.LastChecked)

	t2 := t1.Add(time.Hour)
	r = Evaluate(r.Alert, best("11.00"), t2)
	assert.False(t, r.ShouldNotify)
	assert.False(t, r.Alert.Disarmed)

	t3 := t2.Add(time.Hour)
	r = Evaluate(r.Alert, best("9.80"), t3)
	assert.True(t, r.ShouldNotify)
	assert.Equal(t, t0, *r.Alert.TriggeredAt, "first trigger time is kept")
	assert.Equal(t, t3, *r.Alert.LastTriggeredAt)
}

func TestEvaluate_EqualToTarget(t *testing.T) {
	r := Evaluate(newAlert(), best("10.00"), time.Now())
	assert.True(t, r.ShouldNotify)
}

func TestEvaluate_AboveTarget(t *testing.T) {
	r := Evaluate(newAlert(), best("10.01"), time.Now())
	assert.False(t, r.ShouldNotify)
	assert.Nil(t, r.Alert.TriggeredAt)
}

func TestEvaluate_NoOffer(t *testing.T) {
	t0 := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	prev := t0.Add(-time.Hour)
	a := newAlert()
	a.TriggeredAt = &prev
	a.Disarmed = true

	r := Evaluate(a, nil, t0)
	assert.False(t, r.ShouldNotify)
	assert.Equal(t, t0, *r.Alert.LastChecked)
	assert.Equal(t, prev, *r.Alert.TriggeredAt)
	assert.True(t, r.Alert.Disarmed)
}

func TestEvaluate_Inactive(t *testing.T) {
	a := newAlert()
	a.Active = false

	r := Evaluate(a, best("1.00"), time.Now())
	assert.False(t, r.ShouldNotify)
	assert.Nil(t, r.Alert.TriggeredAt)
	assert.NotNil(t, r.Alert.LastChecked)
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	a := newAlert()
	_ = Evaluate(a, best("1.00"), time.Now())
	assert.Nil(t, a.TriggeredAt)
	assert.Nil(t, a.LastChecked)
	assert.False(t, a.Disarmed)
}

func TestReset(t *testing.T) {
	r := Evaluate(newAlert(), best("9.00"), time.Now())
	a := Reset(r.Alert)

	assert.True(t, a.Pending())
	assert.False(t, a.Disarmed)
	assert.True(t, Evaluate(a, best("9.00"), time.Now()).ShouldNotify)
}
