package carorder

import (
	"context"
	"testing"

	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/store"
)

func seedDemandIndustry(t *testing.T, st store.Store, id string, configs ...models.DemandConfig) {
	t.Helper()
	mustCreate(t, st, store.Industries, models.Industry{
		ID: id, Name: id, StationID: "s1", CarDemandConfig: configs,
	})
}

func countPending(t *testing.T, st store.Store) int {
	t.Helper()
	recs, err := st.FindByQuery(context.Background(), store.CarOrders, store.Record{"status": models.OrderPending})
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	return len(recs)
}

func TestGenerate_DuplicateSuppression(t *testing.T) {
	st := testStore(t)
	seedDemandIndustry(t, st, "ind-mill", models.DemandConfig{
		GoodsID: "lumber", Direction: models.DirectionOutbound,
		CompatibleCarTypes: []string{"aar-box"}, CarsPerSession: 2, Frequency: 1,
	})
	ctx := context.Background()

	res, err := Generate(ctx, st, GenerateOpts{SessionNumber: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.OrdersGenerated != 2 {
		t.Errorf("first run generated %d, want 2", res.OrdersGenerated)
	}
	if res.IndustriesProcessed != 1 {
		t.Errorf("industriesProcessed = %d, want 1", res.IndustriesProcessed)
	}
	if res.Summary.ByIndustry["ind-mill"] != 2 || res.Summary.ByAarType["aar-box"] != 2 {
		t.Errorf("summary = %+v", res.Summary)
	}

	// Second run: every config suppressed by the pending duplicates.
	res, err = Generate(ctx, st, GenerateOpts{SessionNumber: 1})
	if err != nil {
		t.Fatalf("Generate (second): %v", err)
	}
	if res.OrdersGenerated != 0 {
		t.Errorf("second run generated %d, want 0", res.OrdersGenerated)
	}
	if countPending(t, st) != 2 {
		t.Errorf("pending = %d, want 2", countPending(t, st))
	}

	// Force overrides suppression.
	res, err = Generate(ctx, st, GenerateOpts{SessionNumber: 1, Force: true})
	if err != nil {
		t.Fatalf("Generate (force): %v", err)
	}
	if res.OrdersGenerated != 2 {
		t.Errorf("forced run generated %d, want 2", res.OrdersGenerated)
	}
	if countPending(t, st) != 4 {
		t.Errorf("pending = %d, want 4", countPending(t, st))
	}
}

func TestGenerate_Frequency(t *testing.T) {
	st := testStore(t)
	seedDemandIndustry(t, st, "ind-quarry", models.DemandConfig{
		GoodsID: "gravel", Direction: models.DirectionOutbound,
		CompatibleCarTypes: []string{"aar-hopper"}, CarsPerSession: 1, Frequency: 3,
	})
	ctx := context.Background()

	tests := []struct {
		session int
		want    int
	}{
		{1, 0},
		{2, 0},
		{3, 1},
		{4, 0},
		{6, 1},
	}
	for _, tt := range tests {
		res, err := Generate(ctx, st, GenerateOpts{SessionNumber: tt.session})
		if err != nil {
			t.Fatalf("Generate(session %d): %v", tt.session, err)
		}
		if res.OrdersGenerated != tt.want {
			t.Errorf("session %d generated %d, want %d", tt.session, res.OrdersGenerated, tt.want)
		}
	}
}

func TestGenerate_IndustryFilter(t *testing.T) {
	st := testStore(t)
	cfg := models.DemandConfig{
		GoodsID: "goods", Direction: models.DirectionInbound,
		CompatibleCarTypes: []string{"aar-box"}, CarsPerSession: 1, Frequency: 1,
	}
	seedDemandIndustry(t, st, "ind-a", cfg)
	seedDemandIndustry(t, st, "ind-b", cfg)
	// No demand config: never processed.
	mustCreate(t, st, store.Industries, models.Industry{ID: "ind-c", Name: "ind-c", StationID: "s1"})

	res, err := Generate(context.Background(), st, GenerateOpts{
		SessionNumber: 1, IndustryIDs: []string{"ind-b"},
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.IndustriesProcessed != 1 {
		t.Errorf("industriesProcessed = %d, want 1", res.IndustriesProcessed)
	}
	if res.OrdersGenerated != 1 || res.Summary.ByIndustry["ind-b"] != 1 {
		t.Errorf("result = %+v", res)
	}
}

func TestGenerate_UsesCurrentSession(t *testing.T) {
	st := testStore(t)
	seedDemandIndustry(t, st, "ind-a", models.DemandConfig{
		GoodsID: "goods", Direction: models.DirectionInbound,
		CompatibleCarTypes: []string{"aar-box"}, CarsPerSession: 1, Frequency: 1,
	})

	// No explicit session: the lazily-created session 1 applies.
	res, err := Generate(context.Background(), st, GenerateOpts{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.SessionNumber != 1 {
		t.Errorf("sessionNumber = %d, want 1", res.SessionNumber)
	}
	if res.OrdersGenerated != 1 {
		t.Errorf("generated %d, want 1", res.OrdersGenerated)
	}
	if res.Orders[0].SessionNumber != 1 {
		t.Errorf("order session = %d, want 1", res.Orders[0].SessionNumber)
	}
}

func TestGenerate_MultipleConfigs(t *testing.T) {
	st := testStore(t)
	seedDemandIndustry(t, st, "ind-team",
		models.DemandConfig{
			GoodsID: "machinery", Direction: models.DirectionInbound,
			CompatibleCarTypes: []string{"aar-flat"}, CarsPerSession: 1, Frequency: 1,
		},
		models.DemandConfig{
			GoodsID: "scrap", Direction: models.DirectionOutbound,
			CompatibleCarTypes: []string{"aar-gon"}, CarsPerSession: 2, Frequency: 2,
		},
	)
	ctx := context.Background()

	// Session 1: only the every-session config fires.
	res, err := Generate(ctx, st, GenerateOpts{SessionNumber: 1})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.OrdersGenerated != 1 {
		t.Errorf("session 1 generated %d, want 1", res.OrdersGenerated)
	}

	// Session 2: both fire.
	res, err = Generate(ctx, st, GenerateOpts{SessionNumber: 2})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if res.OrdersGenerated != 3 {
		t.Errorf("session 2 generated %d, want 3", res.OrdersGenerated)
	}
	if res.Summary.ByAarType["aar-flat"] != 1 || res.Summary.ByAarType["aar-gon"] != 2 {
		t.Errorf("summary = %+v", res.Summary)
	}
}
