package monitor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bot-mercado/internal/alerts"
	"bot-mercado/internal/apperr"
	"bot-mercado/internal/database"
	"bot-mercado/internal/metrics"
	"bot-mercado/internal/models"
	"bot-mercado/internal/offers"
	"bot-mercado/internal/scraper"
	"bot-mercado/internal/service"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu    sync.Mutex
	sent  []Notification
	fails int // número de envios que falham antes de começar a entregar
	calls int
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.fails > 0 {
		r.fails--
		return fmt.Errorf("telegram indisponível")
	}
	r.sent = append(r.sent, n)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

const storePage = `<html><body>
<h1>Leite Integral Itambé 1L</h1>
<span class="preco-antigo">R$ 6,49</span>
<span class="preco">R$ 4,99</span>
</body></html>`

func setup(t *testing.T) (*Monitor, *database.DB, *recordingNotifier, *httptest.Server) {
	t.Helper()
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/leite" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(storePage))
	}))
	t.Cleanup(srv.Close)

	db, err := database.New(filepath.Join(t.TempDir(), "monitor.db"), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.UpsertProduct(ctx, models.Product{
		ID: "p1", CanonicalName: "leite integral 1000ml", DisplayName: "Leite Integral 1L",
		Active: true, CreatedAt: now,
	}))
	require.NoError(t, db.UpsertSupermarket(ctx, models.Supermarket{ID: "s1", Name: "Atacadão", CityID: "recife", CreatedAt: now}))
	require.NoError(t, db.AddScrapeTarget(ctx, "p1", "s1", srv.URL+"/leite"))

	svc := service.New(db, db, db, db, service.Options{Now: func() time.Time { return now }})
	registry := scraper.NewRegistryWith(scraper.NewPageScraper([]string{"127.0.0.1"}, scraper.Selectors{
		Name:          []string{"h1"},
		Price:         []string{".preco"},
		OriginalPrice: []string{".preco-antigo"},
	}, srv.Client()))

	notifier := &recordingNotifier{}
	mon := New(svc, db, registry, notifier, metrics.New(), zap.NewNop(), time.Minute)
	mon.Delay = 0
	return mon, db, notifier, srv
}

func TestRunOnce_CollectsAndNotifiesOnce(t *testing.T) {
	mon, db, notifier, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, db.InsertAlert(ctx, models.Alert{
		ID: "a1", UserID: "42", ProductID: "p1", CityID: "recife",
		TargetPrice: decimal.RequireFromString("5.00"), Active: true, CreatedAt: now,
	}))

	stats := mon.RunOnce(ctx)
	assert.Equal(t, CycleStats{Collected: 1, Checked: 1, Notified: 1}, stats)
	require.Equal(t, 1, notifier.count())

	n := notifier.sent[0]
	assert.Equal(t, "42", n.Alert.UserID)
	assert.Equal(t, "Leite Integral 1L", n.Product.DisplayName)
	assert.True(t, decimal.RequireFromString("4.99").Equal(n.Offer.Price))
	assert.Equal(t, models.SourceScraping, n.Offer.Source)
	assert.True(t, n.Offer.IsPromotion)
	assert.InDelta(t, 0.8, n.Offer.ConfidenceScore, 1e-9)
	require.NotNil(t, n.Supermarket)
	assert.Equal(t, "Atacadão", n.Supermarket.Name)

	// Alerta desarmado não notifica de novo enquanto o preço seguir abaixo
	stats = mon.RunOnce(ctx)
	assert.Equal(t, 0, stats.Notified)
	assert.Equal(t, 1, notifier.count())

	a, err := db.AlertByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, a.Disarmed)
	require.NotNil(t, a.TriggeredAt)
	assert.True(t, now.Equal(*a.TriggeredAt))
	assert.Equal(t, int64(2), a.Version)
}

func TestRunOnce_FailedDeliveryRetries(t *testing.T) {
	mon, db, notifier, _ := setup(t)
	ctx := context.Background()
	notifier.fails = 1

	require.NoError(t, db.InsertAlert(ctx, models.Alert{
		ID: "a1", UserID: "42", ProductID: "p1", CityID: "recife",
		TargetPrice: decimal.RequireFromString("5.00"), Active: true, CreatedAt: now,
	}))

	stats := mon.RunOnce(ctx)
	assert.Equal(t, 0, stats.Notified)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, 0, notifier.count())

	a, err := db.AlertByID(ctx, "a1")
	require.NoError(t, err)
	assert.False(t, a.Disarmed)
	assert.Nil(t, a.TriggeredAt)
	assert.Nil(t, a.LastTriggeredAt)
	require.NotNil(t, a.LastChecked)

	stats = mon.RunOnce(ctx)
	assert.Equal(t, 1, stats.Notified)
	assert.Equal(t, 0, stats.Failures)
	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, 2, notifier.calls)

	a, err = db.AlertByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, a.Disarmed)
	require.NotNil(t, a.TriggeredAt)
}

func TestRunOnce_TargetFailures(t *testing.T) {
	mon, db, notifier, srv := setup(t)
	ctx := context.Background()

	require.NoError(t, db.AddScrapeTarget(ctx, "p1", "s1", srv.URL+"/sumiu"))
	require.NoError(t, db.AddScrapeTarget(ctx, "p1", "s1", "https://loja-desconhecida.com/leite"))

	stats := mon.RunOnce(ctx)
	assert.Equal(t, 1, stats.Collected)
	assert.Equal(t, 2, stats.Failures)
	assert.Equal(t, 0, notifier.count())
}

func TestRunOnce_AboveTargetStaysQuiet(t *testing.T) {
	mon, db, notifier, _ := setup(t)
	ctx := context.Background()

	require.NoError(t, db.InsertAlert(ctx, models.Alert{
		ID: "a1", UserID: "42", ProductID: "p1", CityID: "recife",
		TargetPrice: decimal.RequireFromString("4.00"), Active: true, CreatedAt: now,
	}))

	stats := mon.RunOnce(ctx)
	assert.Equal(t, 1, stats.Checked)
	assert.Equal(t, 0, stats.Notified)
	assert.Equal(t, 0, notifier.count())
}

type conflictEngine struct{}

func (conflictEngine) ActiveAlerts(context.Context) ([]models.Alert, error) {
	return []models.Alert{{ID: "a1", Active: true}, {ID: "a2", Active: true}}, nil
}

func (conflictEngine) CheckAlert(_ context.Context, a models.Alert) (alerts.Result, *models.Offer, error) {
	if a.ID == "a1" {
		return alerts.Result{}, nil, fmt.Errorf("saving alert a1: %w", apperr.ErrConflict)
	}
	return alerts.Result{}, nil, fmt.Errorf("disk full")
}

func (conflictEngine) RevertTrigger(_ context.Context, _, saved models.Alert) (models.Alert, error) {
	return saved, nil
}

func (conflictEngine) CreateOffer(context.Context, service.OfferInput) (offers.View, error) {
	return offers.View{}, nil
}

func (conflictEngine) GetProduct(context.Context, string) (*models.Product, error) {
	return nil, apperr.ErrNotFound
}

func (conflictEngine) GetSupermarket(context.Context, string) (*models.Supermarket, error) {
	return nil, apperr.ErrNotFound
}

func TestRunOnce_ConflictIsSkipped(t *testing.T) {
	notifier := &recordingNotifier{}
	mon := New(conflictEngine{}, nil, nil, notifier, metrics.New(), zap.NewNop(), time.Minute)

	stats := mon.RunOnce(context.Background())
	assert.Equal(t, CycleStats{Checked: 2, Conflicts: 1, Failures: 1}, stats)
	assert.Equal(t, 0, notifier.count())
}

func TestStart_StopsOnCancel(t *testing.T) {
	mon := New(conflictEngine{}, nil, nil, nil, metrics.New(), zap.NewNop(), time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mon.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
