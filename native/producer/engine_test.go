package producer

import (
	"errors"
	"strings"
	"testing"
)

type mockState struct {
	producers map[[20]byte]*Producer
}

func newMockState() *mockState {
	return &mockState{producers: make(map[[20]byte]*Producer)}
}

func (m *mockState) ProducerGet(addr [20]byte) (*Producer, bool, error) {
	record, ok := m.producers[addr]
	if !ok {
		return nil, false, nil
	}
	return record.Clone(), true, nil
}

func (m *mockState) ProducerPut(record *Producer) error {
	if record == nil {
		return nil
	}
	m.producers[record.Address] = record.Clone()
	return nil
}

// mockAccess treats a fixed set of addresses as admins.
type mockAccess struct {
	admins map[[20]byte]bool
}

func (m *mockAccess) IsAdmin(addr [20]byte) (bool, error) {
	return m.admins[addr], nil
}

func addr(last byte) [20]byte {
	var out [20]byte
	out[19] = last
	return out
}

func newEngine(admins ...[20]byte) (*Engine, *mockState) {
	state := newMockState()
	access := &mockAccess{admins: make(map[[20]byte]bool)}
	for _, a := range admins {
		access.admins[a] = true
	}
	engine := NewEngine()
	engine.SetState(state)
	engine.SetAccess(access)
	return engine, state
}

func TestRegisterCreatesRecord(t *testing.T) {
	engine, _ := newEngine()
	record, err := engine.Register(addr(0x01), "Apiary Nord", "Jura", "FR-0042", "ipfs://profile")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if record.Address != addr(0x01) {
		t.Fatalf("record address mismatch: %x", record.Address)
	}
	if record.Authorized {
		t.Fatalf("fresh registration must not be authorized")
	}
	got, err := engine.Get(addr(0x01))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Apiary Nord" || got.Location != "Jura" {
		t.Fatalf("stored profile mismatch: %+v", got)
	}
}

func TestRegisterRequiresName(t *testing.T) {
	engine, _ := newEngine()
	if _, err := engine.Register(addr(0x01), "   ", "Jura", "", ""); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField for blank name, got %v", err)
	}
}

func TestRegisterRejectsOversizedField(t *testing.T) {
	engine, _ := newEngine()
	long := strings.Repeat("x", MaxFieldLength+1)
	if _, err := engine.Register(addr(0x01), long, "", "", ""); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("expected ErrInvalidField for oversized name, got %v", err)
	}
}

func TestReRegisterPreservesAuthorization(t *testing.T) {
	engine, _ := newEngine(addr(0xAA))
	if _, err := engine.Register(addr(0x01), "Apiary Nord", "Jura", "", ""); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := engine.SetAuthorization(addr(0xAA), addr(0x01), true); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if _, err := engine.Register(addr(0x01), "Apiary Nord", "Valais", "CH-007", ""); err != nil {
		t.Fatalf("re-register: %v", err)
	}
	authorized, err := engine.IsAuthorized(addr(0x01))
	if err != nil {
		t.Fatalf("authorization check: %v", err)
	}
	if !authorized {
		t.Fatalf("re-registration dropped the authorization grant")
	}
	got, err := engine.Get(addr(0x01))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Location != "Valais" {
		t.Fatalf("profile rewrite not applied: %+v", got)
	}
}

func TestSetAuthorizationAdminOnly(t *testing.T) {
	engine, _ := newEngine(addr(0xAA))
	if err := engine.SetAuthorization(addr(0x01), addr(0x02), true); !errors.Is(err, ErrAdminOnly) {
		t.Fatalf("expected ErrAdminOnly, got %v", err)
	}
	if err := engine.SetAuthorization(addr(0xAA), addr(0x02), true); err != nil {
		t.Fatalf("admin authorize: %v", err)
	}
}

func TestSetAuthorizationNoOpFails(t *testing.T) {
	engine, _ := newEngine(addr(0xAA))
	if err := engine.SetAuthorization(addr(0xAA), addr(0x02), false); !errors.Is(err, ErrAuthorizationUnchanged) {
		t.Fatalf("expected ErrAuthorizationUnchanged on redundant revoke, got %v", err)
	}
	if err := engine.SetAuthorization(addr(0xAA), addr(0x02), true); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if err := engine.SetAuthorization(addr(0xAA), addr(0x02), true); !errors.Is(err, ErrAuthorizationUnchanged) {
		t.Fatalf("expected ErrAuthorizationUnchanged on redundant grant, got %v", err)
	}
}

func TestAuthorizeBeforeRegistration(t *testing.T) {
	engine, _ := newEngine(addr(0xAA))
	if err := engine.SetAuthorization(addr(0xAA), addr(0x02), true); err != nil {
		t.Fatalf("pre-registration authorize: %v", err)
	}
	authorized, err := engine.IsAuthorized(addr(0x02))
	if err != nil {
		t.Fatalf("authorization check: %v", err)
	}
	if !authorized {
		t.Fatalf("lazy record did not carry the grant")
	}
	// The profile is still empty until the producer registers itself.
	record, err := engine.Get(addr(0x02))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if record.Name != "" {
		t.Fatalf("unexpected profile on lazy record: %+v", record)
	}
}

func TestGetUnknownProducer(t *testing.T) {
	engine, _ := newEngine()
	if _, err := engine.Get(addr(0x09)); !errors.Is(err, ErrProducerNotFound) {
		t.Fatalf("expected ErrProducerNotFound, got %v", err)
	}
	authorized, err := engine.IsAuthorized(addr(0x09))
	if err != nil {
		t.Fatalf("authorization check: %v", err)
	}
	if authorized {
		t.Fatalf("unknown producer reported authorized")
	}
}
