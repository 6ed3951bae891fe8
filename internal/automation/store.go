package automation

import (
	"sync"
	"time"

	"github.com/wonny/tradepilot/backend/internal/contracts"
	"github.com/wonny/tradepilot/backend/pkg/logger"
)

// =============================================================================
// Automation State Machine - 심볼별 자동매매 상태 관리
// =============================================================================

// 허용 전이:
//
//	watch-only → auto
//	auto ⇄ paused
//	auto → buying → auto | paused
//
// buying은 주문 제출 시 진입, 체결/취소/거부 통지로만 이탈하는 일시 상태.
// 전이는 운영자 또는 시스템 이벤트로만 발생 (자발적 전이 없음).
var legalTransitions = map[contracts.AutomationStatus][]contracts.AutomationStatus{
	contracts.AutomationWatchOnly: {contracts.AutomationAuto},
	contracts.AutomationAuto:      {contracts.AutomationPaused, contracts.AutomationBuying},
	contracts.AutomationPaused:    {contracts.AutomationAuto},
	contracts.AutomationBuying:    {contracts.AutomationAuto, contracts.AutomationPaused},
}

// symbolState carries one symbol's disposition with its own lock.
// 심볼별 직렬화: UI 액션과 체결 콜백이 경합해도 last-writer-wins 금지
type symbolState struct {
	mu        sync.Mutex
	status    contracts.AutomationStatus
	updatedAt time.Time
}

// Store is a keyed symbol → automation status store with per-symbol
// mutual exclusion.
// ⭐ SSOT: 자동매매 상태 전이는 여기서만 (전역 가변 상태 금지)
type Store struct {
	mu     sync.RWMutex
	states map[string]*symbolState
	logger *logger.Logger
}

// NewStore creates an empty automation store
func NewStore(log *logger.Logger) *Store {
	return &Store{
		states: make(map[string]*symbolState),
		logger: log,
	}
}

// state returns the tracked state for a symbol, creating it lazily
func (s *Store) state(symbol string, initial contracts.AutomationStatus) *symbolState {
	s.mu.RLock()
	st, exists := s.states[symbol]
	s.mu.RUnlock()
	if exists {
		return st
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if st, exists = s.states[symbol]; exists {
		return st
	}
	st = &symbolState{status: initial, updatedAt: time.Now()}
	s.states[symbol] = st
	return st
}

// Seed registers a symbol's initial disposition without transition rules.
// 이미 추적 중인 심볼은 그대로 둔다: 주기 생성 실행이 운영자의 paused나
// 진행 중인 buying을 덮어쓰면 안 됨 (이탈은 전이 규칙으로만)
func (s *Store) Seed(symbol string, status contracts.AutomationStatus) {
	s.state(symbol, status)
}

// Get returns the current disposition for a symbol.
// 미등록 심볼은 watch-only로 간주
func (s *Store) Get(symbol string) contracts.AutomationStatus {
	s.mu.RLock()
	st, exists := s.states[symbol]
	s.mu.RUnlock()
	if !exists {
		return contracts.AutomationWatchOnly
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	return st.status
}

// Transition attempts to move a symbol to the target status.
// 불법 전이는 no-op (중복 외부 통지 허용을 위해 오류 아님).
// 반환값은 전이 적용 여부.
func (s *Store) Transition(symbol string, target contracts.AutomationStatus) bool {
	st := s.state(symbol, contracts.AutomationWatchOnly)

	st.mu.Lock()
	defer st.mu.Unlock()

	if !transitionAllowed(st.status, target) {
		s.logger.WithFields(map[string]interface{}{
			"symbol": symbol,
			"from":   string(st.status),
			"to":     string(target),
		}).Debug("Ignoring illegal automation transition")
		return false
	}

	st.status = target
	st.updatedAt = time.Now()
	return true
}

// Snapshot returns a copy of every symbol's current disposition
func (s *Store) Snapshot() map[string]contracts.AutomationStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]contracts.AutomationStatus, len(s.states))
	for symbol, st := range s.states {
		st.mu.Lock()
		out[symbol] = st.status
		st.mu.Unlock()
	}
	return out
}

func transitionAllowed(from, to contracts.AutomationStatus) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
