package parking

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedService wraps a Service with spans and metrics around every
// state-changing operation. Read-only queries are delegated as-is.
type InstrumentedService struct {
	*Service
	telemetry *TelemetryProvider

	// Metrics
	entryOperations   metric.Int64Counter
	exitOperations    metric.Int64Counter
	promotions        metric.Int64Counter
	revenueCollected  metric.Int64Counter
	occupancyGauge    metric.Int64UpDownCounter
	waitingGauge      metric.Int64UpDownCounter
	operationDuration metric.Float64Histogram
	totalSlotsGauge   metric.Int64UpDownCounter
}

func NewInstrumentedService(svc *Service, telemetry *TelemetryProvider) (*InstrumentedService, error) {
	meter := telemetry.Meter()

	entryOperations, err := meter.Int64Counter("parking_entry_operations_total",
		metric.WithDescription("Total number of vehicle entry operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	exitOperations, err := meter.Int64Counter("parking_exit_operations_total",
		metric.WithDescription("Total number of vehicle exit operations"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	promotions, err := meter.Int64Counter("parking_promotions_total",
		metric.WithDescription("Waiting vehicles promoted into a freed slot"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	revenueCollected, err := meter.Int64Counter("parking_revenue_collected_total",
		metric.WithDescription("Cumulative fees collected at exit"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	occupancyGauge, err := meter.Int64UpDownCounter("parking_occupancy",
		metric.WithDescription("Current number of occupied slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	waitingGauge, err := meter.Int64UpDownCounter("parking_waiting_vehicles",
		metric.WithDescription("Current number of vehicles in the wait queue"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	operationDuration, err := meter.Float64Histogram("parking_operation_duration_seconds",
		metric.WithDescription("Duration of parking service operations"),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	totalSlotsGauge, err := meter.Int64UpDownCounter("parking_total_slots",
		metric.WithDescription("Total number of parking slots"),
		metric.WithUnit("1"))
	if err != nil {
		return nil, err
	}

	is := &InstrumentedService{
		Service:           svc,
		telemetry:         telemetry,
		entryOperations:   entryOperations,
		exitOperations:    exitOperations,
		promotions:        promotions,
		revenueCollected:  revenueCollected,
		occupancyGauge:    occupancyGauge,
		waitingGauge:      waitingGauge,
		operationDuration: operationDuration,
		totalSlotsGauge:   totalSlotsGauge,
	}

	totalSlotsGauge.Add(context.Background(), int64(svc.Capacity()))

	return is, nil
}

func (is *InstrumentedService) Entry(ctx context.Context, v VehicleID, now time.Time) (EntryResult, error) {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking.entry",
		trace.WithAttributes(attribute.Int("vehicle.id", int(v))))
	defer span.End()

	start := time.Now()
	res, err := is.Service.Entry(v, now)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{attribute.String("operation", "entry")}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "rejected"))
	} else if res.Outcome == EntryParked {
		span.SetAttributes(attribute.Int("allocated_slot", int(res.Slot)))
		span.AddEvent("slot_allocated", trace.WithAttributes(
			attribute.Int("slot", int(res.Slot)),
		))
		labels = append(labels, attribute.String("status", "parked"))
		is.occupancyGauge.Add(ctx, 1)
	} else {
		span.SetAttributes(attribute.Int("queue_position", res.Position))
		span.AddEvent("vehicle_queued")
		labels = append(labels, attribute.String("status", "queued"))
		is.waitingGauge.Add(ctx, 1)
	}

	is.entryOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	is.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return res, err
}

func (is *InstrumentedService) Exit(ctx context.Context, v VehicleID, now time.Time) (ExitResult, error) {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking.exit",
		trace.WithAttributes(attribute.Int("vehicle.id", int(v))))
	defer span.End()

	start := time.Now()
	res, err := is.Service.Exit(v, now)
	duration := time.Since(start).Seconds()

	labels := []attribute.KeyValue{attribute.String("operation", "exit")}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		labels = append(labels, attribute.String("status", "rejected"))
	} else if res.Outcome == ExitLeftQueue {
		span.AddEvent("left_wait_queue")
		labels = append(labels, attribute.String("status", "left_queue"))
		is.waitingGauge.Add(ctx, -1)
	} else {
		span.SetAttributes(
			attribute.Int("slot", int(res.Slot)),
			attribute.Int64("fee", res.Fee),
		)
		span.AddEvent("slot_released")
		labels = append(labels, attribute.String("status", "exited"))
		is.occupancyGauge.Add(ctx, -1)
		is.revenueCollected.Add(ctx, res.Fee)

		if res.Promoted != nil {
			span.AddEvent("vehicle_promoted", trace.WithAttributes(
				attribute.Int("vehicle.id", int(res.Promoted.Vehicle)),
				attribute.Int("slot", int(res.Promoted.Slot)),
			))
			is.promotions.Add(ctx, 1)
			is.waitingGauge.Add(ctx, -1)
			is.occupancyGauge.Add(ctx, 1)
		}
	}

	is.exitOperations.Add(ctx, 1, metric.WithAttributes(labels...))
	is.operationDuration.Record(ctx, duration, metric.WithAttributes(labels...))

	return res, err
}

func (is *InstrumentedService) RegisterMonthlyPass(ctx context.Context, v VehicleID) error {
	tracer := is.telemetry.Tracer()
	_, span := tracer.Start(ctx, "parking.register_pass",
		trace.WithAttributes(attribute.Int("vehicle.id", int(v))))
	defer span.End()

	err := is.Service.RegisterMonthlyPass(v)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (is *InstrumentedService) EmergencyReset(ctx context.Context) {
	tracer := is.telemetry.Tracer()
	ctx, span := tracer.Start(ctx, "parking.emergency_reset")
	defer span.End()

	occupied := int64(len(is.Service.Parked()))
	waiting := int64(is.Service.WaitingCount())

	is.Service.EmergencyReset()

	span.AddEvent("facility_cleared", trace.WithAttributes(
		attribute.Int64("cleared_vehicles", occupied),
		attribute.Int64("cleared_waiting", waiting),
	))
	is.occupancyGauge.Add(ctx, -occupied)
	is.waitingGauge.Add(ctx, -waiting)
}
