package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetcore/pkg/domain"
)

func validShip(id, name string) domain.Ship {
	return domain.Ship{
		Base:              domain.Base{ID: id},
		Name:              name,
		CapacityTEU:       1000,
		SpeedKnots:        18,
		FuelLitersPerHour: 150,
	}
}

func TestStoreRunInTransactionAndSnapshots(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, ok := tx.FindShip("missing"); ok {
			t.Fatalf("expected missing ship lookup")
		}
		created, err := tx.CreateShip(validShip("SHIP001", "Ocean Star"))
		if err != nil {
			return err
		}
		if created.Class != domain.ClassContainer || created.Status != domain.StatusAvailable {
			t.Fatalf("expected defaulted class/status, got %q/%q", created.Class, created.Status)
		}
		if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
			t.Fatalf("expected stamped timestamps")
		}
		view := tx.Snapshot()
		if len(view.ListShips()) != 1 {
			t.Fatalf("snapshot mismatch")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("run transaction: %v", err)
	}
	if len(store.ListShips()) != 1 {
		t.Fatalf("expected persisted ship")
	}
	snapshot := store.ExportState()
	store.ImportState(Snapshot{})
	if len(store.ListShips()) != 0 {
		t.Fatalf("expected cleared state")
	}
	store.ImportState(snapshot)
	if len(store.ListShips()) != 1 {
		t.Fatalf("expected restored state")
	}
	if store.RulesEngine() == nil {
		t.Fatalf("expected rules engine")
	}
	if store.NowFunc() == nil {
		t.Fatalf("expected now func")
	}
}

func TestStorePreservesInsertionOrder(t *testing.T) {
	store := NewStore(nil)
	ids := []string{"SHIP003", "SHIP001", "SHIP002"}
	for _, id := range ids {
		if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
			_, err := tx.CreateShip(validShip(id, "Vessel "+id))
			return err
		}); err != nil {
			t.Fatalf("create %s: %v", id, err)
		}
	}
	ships := store.ListShips()
	if len(ships) != len(ids) {
		t.Fatalf("expected %d ships, got %d", len(ids), len(ships))
	}
	for i, id := range ids {
		if ships[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, ships[i].ID)
		}
	}
}

func TestCreateShipValidation(t *testing.T) {
	store := NewStore(nil)
	cases := []struct {
		name  string
		ship  domain.Ship
		field string
	}{
		{"empty id", validShip("", "No ID"), "id"},
		{"empty name", validShip("SHIP009", "  "), "name"},
		{"zero capacity", func() domain.Ship { s := validShip("SHIP009", "X"); s.CapacityTEU = 0; return s }(), "capacity"},
		{"negative speed", func() domain.Ship { s := validShip("SHIP009", "X"); s.SpeedKnots = -1; return s }(), "speed"},
		{"zero fuel", func() domain.Ship { s := validShip("SHIP009", "X"); s.FuelLitersPerHour = 0; return s }(), "fuel_consumption"},
		{"bad status", func() domain.Ship { s := validShip("SHIP009", "X"); s.Status = "sunk"; return s }(), "status"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
				_, err := tx.CreateShip(tc.ship)
				return err
			})
			var verr domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, verr.Field)
			}
			if len(store.ListShips()) != 0 {
				t.Fatalf("failed insert must not mutate state")
			}
		})
	}
}

func TestCreateShipDuplicateID(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateShip(validShip("SHIP001", "Ocean Star"))
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateShip(validShip("SHIP001", "Impostor"))
		return err
	})
	var dup domain.DuplicateIDError
	if !errors.As(err, &dup) || dup.ID != "SHIP001" {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	ships := store.ListShips()
	if len(ships) != 1 || ships[0].Name != "Ocean Star" {
		t.Fatalf("registry changed by failed duplicate insert: %+v", ships)
	}
}

func TestUpdateAndDeleteShip(t *testing.T) {
	store := NewStore(nil)
	store.SetNowFunc(func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) })
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		if _, err := tx.CreateShip(validShip("SHIP001", "Ocean Star")); err != nil {
			return err
		}
		_, err := tx.CreateShip(validShip("SHIP002", "Sea Dragon"))
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.UpdateShip("SHIP001", func(s *domain.Ship) error {
			s.Status = domain.StatusInTransit
			return nil
		})
		return err
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, ok := store.GetShip("SHIP001")
	if !ok || got.Status != domain.StatusInTransit {
		t.Fatalf("expected updated status, got %+v", got)
	}

	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteShip("SHIP001")
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	ships := store.ListShips()
	if len(ships) != 1 || ships[0].ID != "SHIP002" {
		t.Fatalf("expected SHIP002 only, got %+v", ships)
	}

	_, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		return tx.DeleteShip("SHIP001")
	})
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

type blockingRule struct{}

func (blockingRule) Name() string { return "block_everything" }

func (blockingRule) Evaluate(_ context.Context, _ domain.RuleView, _ []domain.Change) (domain.Result, error) {
	return domain.Result{Violations: []domain.Violation{{
		Rule:     "block_everything",
		Severity: domain.SeverityBlock,
		Message:  "nope",
	}}}, nil
}

func TestStoreRuleViolationRollsBack(t *testing.T) {
	store := NewStore(domain.NewRulesEngine())
	store.RulesEngine().Register(blockingRule{})
	res, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, e := tx.CreateShip(validShip("SHIP001", "Ocean Star"))
		return e
	})
	var rve domain.RuleViolationError
	if !errors.As(err, &rve) {
		t.Fatalf("expected rule violation error, got %v", err)
	}
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result")
	}
	if len(store.ListShips()) != 0 {
		t.Fatalf("blocked transaction must not commit")
	}
}

func TestViewSeesCommittedState(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateShip(validShip("SHIP002", "Sea Breeze"))
		return err
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.View(context.Background(), func(v domain.TransactionView) error {
		if _, ok := v.FindShip("SHIP002"); !ok {
			t.Fatalf("expected SHIP002 in view")
		}
		if len(v.ListShips()) != 1 {
			t.Fatalf("view list mismatch")
		}
		return nil
	}); err != nil {
		t.Fatalf("view: %v", err)
	}
}

func validPort(id, name string) domain.Port {
	return domain.Port{
		Base:      domain.Base{ID: id},
		Name:      name,
		Latitude:  35.6295,
		Longitude: 139.7431,
		Berths: []domain.Berth{
			{ID: id + "_B1", CapacityTEU: 100, HandlingRateTEU: 20},
			{ID: id + "_B2", CapacityTEU: 100, HandlingRateTEU: 20},
		},
	}
}

func TestCreatePortAndOrdering(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		for _, id := range []string{"PORT003", "PORT001", "PORT002"} {
			if _, e := tx.CreatePort(validPort(id, "Port "+id)); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	ports := store.ListPorts()
	if len(ports) != 3 {
		t.Fatalf("expected 3 ports, got %d", len(ports))
	}
	for i, want := range []string{"PORT003", "PORT001", "PORT002"} {
		if ports[i].ID != want {
			t.Fatalf("expected %s at position %d, got %s", want, i, ports[i].ID)
		}
	}
	if _, ok := store.GetPort("PORT001"); !ok {
		t.Fatalf("expected PORT001 lookup")
	}
}

func TestCreatePortValidation(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	cases := []struct {
		name   string
		mutate func(*domain.Port)
	}{
		{"empty id", func(p *domain.Port) { p.ID = " " }},
		{"empty name", func(p *domain.Port) { p.Name = "" }},
		{"latitude too high", func(p *domain.Port) { p.Latitude = 91 }},
		{"latitude too low", func(p *domain.Port) { p.Latitude = -90.5 }},
		{"longitude too high", func(p *domain.Port) { p.Longitude = 180.1 }},
		{"longitude too low", func(p *domain.Port) { p.Longitude = -181 }},
		{"berth without id", func(p *domain.Port) { p.Berths[0].ID = "" }},
		{"berth zero capacity", func(p *domain.Port) { p.Berths[0].CapacityTEU = 0 }},
		{"berth zero rate", func(p *domain.Port) { p.Berths[1].HandlingRateTEU = 0 }},
		{"duplicate berth id", func(p *domain.Port) { p.Berths[1].ID = p.Berths[0].ID }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			port := validPort("PORT001", "東京港")
			tc.mutate(&port)
			_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
				_, e := tx.CreatePort(port)
				return e
			})
			var ve domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(store.ListPorts()) != 0 {
				t.Fatalf("rejected port must not commit")
			}
		})
	}
}

func TestCreatePortDuplicateID(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, e := tx.CreatePort(validPort("PORT001", "東京港"))
		return e
	}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, e := tx.CreatePort(validPort("PORT001", "Other"))
		return e
	})
	var dup domain.DuplicateIDError
	if !errors.As(err, &dup) || dup.ID != "PORT001" {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	if dup.Entity != domain.EntityPort {
		t.Fatalf("expected port entity, got %s", dup.Entity)
	}
}

func TestUpdatePortCommitsBerthState(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, e := tx.CreatePort(validPort("PORT001", "東京港"))
		return e
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, e := tx.UpdatePort("PORT001", func(p *domain.Port) error {
			p.Berths[0].Occupied = true
			p.Berths[0].ShipID = "SHIP001"
			return nil
		})
		return e
	}); err != nil {
		t.Fatalf("update: %v", err)
	}
	port, ok := store.GetPort("PORT001")
	if !ok || !port.Berths[0].Occupied || port.Berths[0].ShipID != "SHIP001" {
		t.Fatalf("berth state not committed: %+v", port)
	}

	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		return tx.DeletePort("PORT001")
	}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(store.ListPorts()) != 0 {
		t.Fatalf("expected empty port registry after delete")
	}
	err := func() error {
		_, e := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeletePort("PORT001")
		})
		return e
	}()
	var missing domain.NotFoundError
	if !errors.As(err, &missing) || missing.Entity != domain.EntityPort {
		t.Fatalf("expected port not found error, got %v", err)
	}
}

func TestPortCopiesDoNotAliasStore(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		_, e := tx.CreatePort(validPort("PORT001", "東京港"))
		return e
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	port, _ := store.GetPort("PORT001")
	port.Berths[0].Occupied = true
	port.Berths[0].ShipID = "ROGUE"

	fresh, _ := store.GetPort("PORT001")
	if fresh.Berths[0].Occupied || fresh.Berths[0].ShipID != "" {
		t.Fatalf("caller mutation leaked into committed state: %+v", fresh)
	}
}

func TestSnapshotRoundTripsPorts(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()
	if _, err := store.RunInTransaction(ctx, func(tx domain.Transaction) error {
		if _, e := tx.CreateShip(validShip("SHIP001", "Ocean Star")); e != nil {
			return e
		}
		if _, e := tx.CreatePort(validPort("PORT002", "横浜港")); e != nil {
			return e
		}
		_, e := tx.CreatePort(validPort("PORT001", "東京港"))
		return e
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	snapshot := store.ExportState()
	if len(snapshot.Ships) != 1 || len(snapshot.Ports) != 2 {
		t.Fatalf("unexpected snapshot %+v", snapshot)
	}

	restored := NewStore(nil)
	restored.ImportState(snapshot)
	ports := restored.ListPorts()
	if len(ports) != 2 || ports[0].ID != "PORT002" || ports[1].ID != "PORT001" {
		t.Fatalf("port order lost on import: %+v", ports)
	}
	if len(ports[0].Berths) != 2 {
		t.Fatalf("berths lost on import: %+v", ports[0])
	}
}
