package observability_test

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/xraph/tokenledger/amount"
	"github.com/xraph/tokenledger/event"
	"github.com/xraph/tokenledger/observability"
)

type fakeCounter struct{ n float64 }

func (c *fakeCounter) Inc()          { c.n++ }
func (c *fakeCounter) Add(v float64) { c.n += v }

type fakeHistogram struct{ samples []float64 }

func (h *fakeHistogram) Observe(v float64) { h.samples = append(h.samples, v) }

type fakeFactory struct {
	counters   map[string]*fakeCounter
	histograms map[string]*fakeHistogram
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		counters:   make(map[string]*fakeCounter),
		histograms: make(map[string]*fakeHistogram),
	}
}

func (f *fakeFactory) Counter(name string) observability.Counter {
	c := &fakeCounter{}
	f.counters[name] = c
	return c
}

func (f *fakeFactory) Histogram(name string) observability.Histogram {
	h := &fakeHistogram{}
	f.histograms[name] = h
	return h
}

func TestMetricsExtension(t *testing.T) {
	ctx := context.Background()
	factory := newFakeFactory()
	m := observability.NewMetricsExtension(factory)

	if m.Name() != "observability-metrics" {
		t.Fatalf("unexpected name %q", m.Name())
	}
	if err := m.OnInit(ctx, nil); err != nil {
		t.Fatalf("OnInit: %v", err)
	}

	alice := common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob := common.HexToAddress("0x2222222222222222222222222222222222222222")

	transfer := event.NewTransfer(1, alice, bob, amount.FromUint64(42))
	if err := m.OnTransfer(ctx, transfer); err != nil {
		t.Fatalf("OnTransfer: %v", err)
	}
	if err := m.OnTransfer(ctx, transfer); err != nil {
		t.Fatalf("OnTransfer: %v", err)
	}
	if err := m.OnTransferDeclined(ctx, transfer); err != nil {
		t.Fatalf("OnTransferDeclined: %v", err)
	}
	if err := m.OnApproval(ctx, event.NewApproval(2, alice, bob, amount.FromUint64(5))); err != nil {
		t.Fatalf("OnApproval: %v", err)
	}
	if err := m.OnMint(ctx, event.NewMint(3, alice, amount.FromUint64(10))); err != nil {
		t.Fatalf("OnMint: %v", err)
	}
	if err := m.OnBurn(ctx, event.NewBurn(4, alice, amount.FromUint64(10))); err != nil {
		t.Fatalf("OnBurn: %v", err)
	}
	if err := m.OnMintAgentChanged(ctx, event.NewMintAgentChanged(5, bob, true)); err != nil {
		t.Fatalf("OnMintAgentChanged: %v", err)
	}
	if err := m.OnOwnershipTransferred(ctx, event.NewOwnershipTransferred(6, alice, bob)); err != nil {
		t.Fatalf("OnOwnershipTransferred: %v", err)
	}

	want := map[string]float64{
		"tokenledger.transfer.committed":    2,
		"tokenledger.transfer.declined":     1,
		"tokenledger.approval.committed":    1,
		"tokenledger.mint.committed":        1,
		"tokenledger.burn.committed":        1,
		"tokenledger.mint_agent.changed":    1,
		"tokenledger.ownership.transferred": 1,
	}
	for name, n := range want {
		c, ok := factory.counters[name]
		if !ok {
			t.Fatalf("counter %q was never created", name)
		}
		if c.n != n {
			t.Errorf("counter %q = %v, want %v", name, c.n, n)
		}
	}

	h := factory.histograms["tokenledger.transfer.volume"]
	if h == nil {
		t.Fatal("transfer volume histogram was never created")
	}
	if len(h.samples) != 2 || h.samples[0] != 42 {
		t.Errorf("unexpected volume samples %v", h.samples)
	}
}

func TestMetricsExtensionVolumeSkipsHugeValues(t *testing.T) {
	factory := newFakeFactory()
	m := observability.NewMetricsExtension(factory)

	huge := amount.MustParse("340282366920938463463374607431768211456") // 2^128
	e := event.NewTransfer(1, common.Address{}, common.HexToAddress("0x01"), huge)
	if err := m.OnTransfer(context.Background(), e); err != nil {
		t.Fatalf("OnTransfer: %v", err)
	}

	if got := factory.counters["tokenledger.transfer.committed"].n; got != 1 {
		t.Errorf("committed counter = %v, want 1", got)
	}
	if samples := factory.histograms["tokenledger.transfer.volume"].samples; len(samples) != 0 {
		t.Errorf("expected no volume samples for oversized value, got %v", samples)
	}
}
