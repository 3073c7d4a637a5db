package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/infrastructure/logger"
	"github.com/mymoolah/walletcore/internal/infrastructure/metrics"
)

// RailCallback is a verified rail notification reduced to what settlement
// needs. Reference is our merchant transaction id when the rail echoes it.
type RailCallback struct {
	Reference         string
	ExternalReference string
	StatusCode        string
	Reason            string
	Amount            *decimal.Decimal
	Raw               domain.JSON
}

// CallbackParser decodes a rail's callback body.
type CallbackParser interface {
	ParseCallback(rail domain.Rail, payload []byte) (*RailCallback, error)
}

// CallbackUseCase applies rail callbacks. Signatures are verified before
// the payload reaches it.
type CallbackUseCase struct {
	parser  CallbackParser
	engine  *SettlementEngine
	metrics *metrics.Metrics
}

// NewCallbackUseCase creates a new CallbackUseCase.
func NewCallbackUseCase(parser CallbackParser, engine *SettlementEngine, metrics *metrics.Metrics) *CallbackUseCase {
	return &CallbackUseCase{parser: parser, engine: engine, metrics: metrics}
}

// Handle parses payload and applies it to the movement it names. Repeated
// callbacks for a settled movement report AlreadyProcessed.
func (uc *CallbackUseCase) Handle(ctx context.Context, rail domain.Rail, payload []byte) (*SettlementResult, error) {
	if !rail.IsValid() {
		return nil, domain.ErrUnsupportedRail
	}
	if uc.metrics != nil {
		uc.metrics.CallbacksReceived.WithLabelValues(string(rail)).Inc()
	}

	cb, err := uc.parser.ParseCallback(rail, payload)
	if err != nil {
		return nil, err
	}

	o := Outcome{
		Reference:         cb.Reference,
		ExternalReference: cb.ExternalReference,
		Rail:              rail,
		Status:            domain.MapRailStatus(rail, cb.StatusCode),
		RawCode:           cb.StatusCode,
		Reason:            cb.Reason,
		Amount:            cb.Amount,
		Payload:           domain.JSON{"callback": cb.Raw},
		Source:            SourceCallback,
	}

	res, err := uc.engine.ApplyOutcome(ctx, o)
	if isNotFound(err) && o.Reference != "" && o.ExternalReference != "" {
		o.Reference = ""
		res, err = uc.engine.ApplyOutcome(ctx, o)
	}
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().
		Str("rail", string(rail)).
		Str("code", cb.StatusCode).
		Str("reference", res.Movement.MerchantTransactionID).
		Bool("applied", res.Applied).
		Bool("already_processed", res.AlreadyProcessed).
		Msg("callback handled")
	return res, nil
}
