package inputbuffer

import (
	"sync"

	"lockstepd/command"
)

const historyDepth = 5

// Predictor fills a missing (tick, playerId) slot by cloning that player's
// most recent command with the tick rewritten, falling back to Empty when
// no history exists. It also tracks prediction accuracy for observability;
// the engine never changes behavior based on this counter.
type Predictor struct {
	mu      sync.Mutex
	history map[int32][]command.Command // most recent last, capped at historyDepth
	correct uint64
	total   uint64
}

// NewPredictor returns an empty Predictor.
func NewPredictor() *Predictor {
	return &Predictor{history: make(map[int32][]command.Command)}
}

// Observe records a confirmed command for future prediction, appending it
// as the player's most recent entry and keeping only the last historyDepth.
func (p *Predictor) Observe(cmd command.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	hist := p.history[cmd.PlayerID]
	hist = append(hist, cmd)
	if len(hist) > historyDepth {
		hist = hist[len(hist)-historyDepth:]
	}
	p.history[cmd.PlayerID] = hist
}

// Predict returns the predicted command for (playerID, tick): the player's
// most recent observed command with Tick rewritten, or Empty if no history
// exists.
func (p *Predictor) Predict(playerID, tick int32) command.Command {
	p.mu.Lock()
	defer p.mu.Unlock()
	hist := p.history[playerID]
	if len(hist) == 0 {
		return command.NewEmpty(playerID, tick)
	}
	last := hist[len(hist)-1]
	last.Tick = tick
	return last
}

// Resolve compares a predicted command's kind against the later-arriving
// real command and updates the accuracy counter. "Correct" means the
// predicted kind equals the real command's kind.
func (p *Predictor) Resolve(predicted, real command.Command) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total++
	if predicted.Kind() == real.Kind() {
		p.correct++
	}
}

// Accuracy returns correct/total, or 0 if nothing has been resolved yet.
func (p *Predictor) Accuracy() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total == 0 {
		return 0
	}
	return float64(p.correct) / float64(p.total)
}
