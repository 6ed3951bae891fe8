package automation

import (
	"sync"
	"testing"

	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/config"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

func newTestStore() *Store {
	log := logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "console",
	})
	return NewStore(log)
}

func TestStore_DefaultsToWatchOnly(t *testing.T) {
	store := newTestStore()
	if got := store.Get("AAPL"); got != contracts.AutomationWatchOnly {
		t.Errorf("Get() on unknown symbol = %s, want watch-only", got)
	}
}

func TestStore_LegalTransitions(t *testing.T) {
	tests := []struct {
		name string
		from contracts.AutomationStatus
		to   contracts.AutomationStatus
	}{
		{name: "watch-only to auto", from: contracts.AutomationWatchOnly, to: contracts.AutomationAuto},
		{name: "auto to paused", from: contracts.AutomationAuto, to: contracts.AutomationPaused},
		{name: "paused to auto", from: contracts.AutomationPaused, to: contracts.AutomationAuto},
		{name: "auto to buying", from: contracts.AutomationAuto, to: contracts.AutomationBuying},
		{name: "buying to auto on fill", from: contracts.AutomationBuying, to: contracts.AutomationAuto},
		{name: "buying to paused on reject", from: contracts.AutomationBuying, to: contracts.AutomationPaused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			store.Seed("AAPL", tt.from)

			if !store.Transition("AAPL", tt.to) {
				t.Fatalf("Transition(%s → %s) rejected, want applied", tt.from, tt.to)
			}
			if got := store.Get("AAPL"); got != tt.to {
				t.Errorf("status after transition = %s, want %s", got, tt.to)
			}
		})
	}
}

func TestStore_IllegalTransitionsAreNoOps(t *testing.T) {
	tests := []struct {
		name string
		from contracts.AutomationStatus
		to   contracts.AutomationStatus
	}{
		// 중복 외부 통지 허용
		{name: "buying to buying", from: contracts.AutomationBuying, to: contracts.AutomationBuying},
		{name: "paused to buying", from: contracts.AutomationPaused, to: contracts.AutomationBuying},
		{name: "watch-only to buying", from: contracts.AutomationWatchOnly, to: contracts.AutomationBuying},
		{name: "auto to watch-only", from: contracts.AutomationAuto, to: contracts.AutomationWatchOnly},
		{name: "watch-only to paused", from: contracts.AutomationWatchOnly, to: contracts.AutomationPaused},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore()
			store.Seed("AAPL", tt.from)

			if store.Transition("AAPL", tt.to) {
				t.Fatalf("Transition(%s → %s) applied, want no-op", tt.from, tt.to)
			}
			// 상태 불변
			if got := store.Get("AAPL"); got != tt.from {
				t.Errorf("status after illegal transition = %s, want %s", got, tt.from)
			}
		})
	}
}

func TestStore_TransitionOnUnknownSymbol(t *testing.T) {
	store := newTestStore()

	// 미등록 심볼은 watch-only에서 시작하므로 auto 전이는 허용
	if !store.Transition("NVDA", contracts.AutomationAuto) {
		t.Error("watch-only → auto on unknown symbol should be applied")
	}
	if got := store.Get("NVDA"); got != contracts.AutomationAuto {
		t.Errorf("status = %s, want auto", got)
	}
}

func TestStore_SeedKeepsTrackedState(t *testing.T) {
	// 주기 생성 실행은 심볼마다 Seed를 다시 호출한다. 그 재등록이
	// 주문 진행(buying)이나 운영자 pause를 되돌리면 안 됨.
	store := newTestStore()

	store.Seed("AAPL", contracts.AutomationAuto)
	if !store.Transition("AAPL", contracts.AutomationBuying) {
		t.Fatal("auto → buying rejected")
	}
	store.Seed("AAPL", contracts.AutomationAuto)
	if got := store.Get("AAPL"); got != contracts.AutomationBuying {
		t.Errorf("status after re-seed = %s, want buying (exit only via order notification)", got)
	}

	store.Seed("MSFT", contracts.AutomationAuto)
	if !store.Transition("MSFT", contracts.AutomationPaused) {
		t.Fatal("auto → paused rejected")
	}
	store.Seed("MSFT", contracts.AutomationAuto)
	if got := store.Get("MSFT"); got != contracts.AutomationPaused {
		t.Errorf("status after re-seed = %s, want paused (operator intent preserved)", got)
	}
}

func TestStore_Snapshot(t *testing.T) {
	store := newTestStore()
	store.Seed("AAPL", contracts.AutomationAuto)
	store.Seed("MSFT", contracts.AutomationPaused)

	snap := store.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot() = %d entries, want 2", len(snap))
	}
	if snap["AAPL"] != contracts.AutomationAuto || snap["MSFT"] != contracts.AutomationPaused {
		t.Errorf("Snapshot() = %v", snap)
	}
}

func TestStore_ConcurrentTransitions(t *testing.T) {
	// UI 액션과 체결 콜백이 경합하는 상황: 심볼별 직렬화로 레이스 없이 수렴
	store := newTestStore()
	symbols := []string{"AAPL", "MSFT", "NVDA", "TSLA"}
	for _, symbol := range symbols {
		store.Seed(symbol, contracts.AutomationAuto)
	}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		for _, symbol := range symbols {
			wg.Add(2)
			go func(sym string) {
				defer wg.Done()
				store.Transition(sym, contracts.AutomationBuying)
				store.Transition(sym, contracts.AutomationAuto)
			}(symbol)
			go func(sym string) {
				defer wg.Done()
				store.Transition(sym, contracts.AutomationPaused)
				store.Transition(sym, contracts.AutomationAuto)
			}(symbol)
		}
	}
	wg.Wait()

	// 최종 상태는 항상 도달 가능한 상태 집합 안에 있어야 함
	for _, symbol := range symbols {
		got := store.Get(symbol)
		switch got {
		case contracts.AutomationAuto, contracts.AutomationPaused, contracts.AutomationBuying:
		default:
			t.Errorf("%s: unexpected terminal status %s", symbol, got)
		}
	}
}
