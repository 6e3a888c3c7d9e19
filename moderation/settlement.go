package moderation

import (
	"log"
	"sync"

	"github.com/inkpress/api-go/models"
)

// SettlementNotifier is the custody collaborator. The engine only tracks the
// accounting; actual fund transfer lives behind this interface and is notified
// after the state transition commits, never as a precondition for it.
type SettlementNotifier interface {
	StakeEscrowRequested(disputeID uint, stakerID uint, amount int64)
	StakeSettled(disputeID uint, outcome string)
}

// LogNotifier is the in-process stand-in for the settlement service. It keeps
// the escrow book and the deterrence pool (stakes forfeited by dismissed
// flags) in memory and logs every movement.
type LogNotifier struct {
	mu      sync.Mutex
	escrows map[uint]int64
	pool    int64
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{escrows: make(map[uint]int64)}
}

func (n *LogNotifier) StakeEscrowRequested(disputeID uint, stakerID uint, amount int64) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.escrows[disputeID] = amount
	log.Printf("settlement: escrow requested for dispute %d, staker %d, amount %d", disputeID, stakerID, amount)
}

func (n *LogNotifier) StakeSettled(disputeID uint, outcome string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	amount := n.escrows[disputeID]
	delete(n.escrows, disputeID)

	if outcome == models.OutcomeDismissed {
		n.pool += amount
		log.Printf("settlement: dispute %d dismissed, %d forfeited to deterrence pool (total %d)", disputeID, amount, n.pool)
		return
	}
	log.Printf("settlement: dispute %d upheld, %d returned to flagger", disputeID, amount)
}

// DeterrencePool returns the running total of forfeited stakes.
func (n *LogNotifier) DeterrencePool() int64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool
}
