package carorder

import (
	"context"
	"log"

	"github.com/zulandar/waybill/internal/fault"
	"github.com/zulandar/waybill/internal/models"
	"github.com/zulandar/waybill/internal/rules"
	"github.com/zulandar/waybill/internal/session"
	"github.com/zulandar/waybill/internal/store"
)

// GenerateOpts controls a generation run. SessionNumber 0 means "the
// current session". IndustryIDs narrows the run; Force skips duplicate
// suppression.
type GenerateOpts struct {
	SessionNumber int
	IndustryIDs   []string
	Force         bool
}

// GenerateResult reports a generation run.
type GenerateResult struct {
	SessionNumber       int               `json:"sessionNumber"`
	OrdersGenerated     int               `json:"ordersGenerated"`
	IndustriesProcessed int               `json:"industriesProcessed"`
	Summary             GenerateSummary   `json:"summary"`
	Orders              []models.CarOrder `json:"orders"`
}

// GenerateSummary groups generated-order counts.
type GenerateSummary struct {
	ByIndustry map[string]int `json:"byIndustry"`
	ByAarType  map[string]int `json:"byAarType"`
}

// Generate creates orders from industry demand configs.
//
// A config fires when sessionNumber is a multiple of its frequency.
// Unless Force is set, a config whose (industry, aarType, session) triple
// already has a pending order is skipped. Individual create failures are
// logged and do not abort the batch.
func Generate(ctx context.Context, st store.Store, opts GenerateOpts) (*GenerateResult, error) {
	sessionNumber := opts.SessionNumber
	if sessionNumber == 0 {
		sess, err := session.Current(ctx, st)
		if err != nil {
			return nil, fault.New(fault.PreconditionFailed, "no current session for generation")
		}
		sessionNumber = sess.CurrentSessionNumber
	}
	if sessionNumber < 1 {
		return nil, fault.Newf(fault.InvalidArgument, "sessionNumber %d must be >= 1", sessionNumber)
	}

	recs, err := st.FindAll(ctx, store.Industries)
	if err != nil {
		return nil, fault.Store(err, "read industries")
	}
	industries, err := models.FromRecords[models.Industry](recs)
	if err != nil {
		return nil, err
	}

	var wanted map[string]bool
	if len(opts.IndustryIDs) > 0 {
		wanted = make(map[string]bool, len(opts.IndustryIDs))
		for _, id := range opts.IndustryIDs {
			wanted[id] = true
		}
	}

	result := &GenerateResult{
		SessionNumber: sessionNumber,
		Summary: GenerateSummary{
			ByIndustry: make(map[string]int),
			ByAarType:  make(map[string]int),
		},
		Orders: []models.CarOrder{},
	}

	for _, ind := range industries {
		if len(ind.CarDemandConfig) == 0 {
			continue
		}
		if wanted != nil && !wanted[ind.ID] {
			continue
		}
		result.IndustriesProcessed++

		for _, dc := range ind.CarDemandConfig {
			if sessionNumber%dc.Frequency != 0 {
				continue
			}
			if len(dc.CompatibleCarTypes) == 0 {
				continue
			}
			aarTypeID := dc.CompatibleCarTypes[0]

			if !opts.Force {
				existing, err := pendingOrders(ctx, st, ind.ID, sessionNumber)
				if err != nil {
					return nil, err
				}
				if rules.IsDuplicateOrder(existing, ind.ID, aarTypeID, sessionNumber) {
					continue
				}
			}

			for i := 0; i < dc.CarsPerSession; i++ {
				order := models.CarOrder{
					IndustryID:         ind.ID,
					AarTypeID:          aarTypeID,
					GoodsID:            dc.GoodsID,
					Direction:          dc.Direction,
					CompatibleCarTypes: dc.CompatibleCarTypes,
					SessionNumber:      sessionNumber,
					Status:             models.OrderPending,
					AssignedCarID:      nil,
					AssignedTrainID:    nil,
					CreatedAt:          models.Timestamp(),
				}
				rec, err := models.ToRecord(order)
				if err != nil {
					log.Printf("carorder: generate: encode order for %s: %v", ind.ID, err)
					continue
				}
				created, err := st.Create(ctx, store.CarOrders, rec)
				if err != nil {
					// Batch resilience: one failed order must not sink
					// the rest of the run.
					log.Printf("carorder: generate: create order for %s: %v", ind.ID, err)
					continue
				}
				out, err := models.FromRecord[models.CarOrder](created)
				if err != nil {
					log.Printf("carorder: generate: decode created order: %v", err)
					continue
				}
				result.Orders = append(result.Orders, *out)
				result.OrdersGenerated++
				result.Summary.ByIndustry[ind.ID]++
				result.Summary.ByAarType[aarTypeID]++
			}
		}
	}
	return result, nil
}
