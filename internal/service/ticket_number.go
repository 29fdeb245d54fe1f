package service

import (
	"crypto/rand"
	"io"
	"math/big"
	"strconv"
	"strings"
	"sync"
	"time"
)

const ticketNumberSuffixLen = 4

var base36Max = big.NewInt(36)

// TicketNumberGenerator issues numbers shaped TKT-<base36 millis>-<4 random base36>.
// Uniqueness is enforced by the store; callers retry on collision.
type TicketNumberGenerator struct {
	mu   sync.Mutex
	now  func() time.Time
	rand io.Reader
}

// NewTicketNumberGenerator uses the wall clock and crypto/rand.
func NewTicketNumberGenerator() *TicketNumberGenerator {
	return &TicketNumberGenerator{now: time.Now, rand: rand.Reader}
}

// Next returns a fresh candidate number.
func (g *TicketNumberGenerator) Next() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	millis := g.now().UnixMilli()
	var suffix strings.Builder
	for i := 0; i < ticketNumberSuffixLen; i++ {
		n, err := rand.Int(g.rand, base36Max)
		if err != nil {
			return "", err
		}
		suffix.WriteString(strconv.FormatInt(n.Int64(), 36))
	}
	return "TKT-" + strings.ToUpper(strconv.FormatInt(millis, 36)) + "-" + strings.ToUpper(suffix.String()), nil
}
