package carerequests

import (
	"sync"
	"time"
)

// CooldownWindow es la ventana fija entre requests del mismo tipo para el
// mismo booking. Una sola tier, sin backoff.
const CooldownWindow = 15 * time.Minute

// latestOf resuelve el timestamp efectivo entre las dos fuentes del guard:
// el log persistido y el cache de sesión. Gana el más reciente; si solo una
// fuente tiene registro, esa manda; si ninguna, nil (sin cooldown).
func latestOf(persisted, cached *time.Time) *time.Time {
	if persisted == nil {
		return cached
	}
	if cached == nil {
		return persisted
	}
	if cached.After(*persisted) {
		return cached
	}
	return persisted
}

// onCooldown decide si latest todavía bloquea a now.
func onCooldown(latest *time.Time, now time.Time) bool {
	if latest == nil {
		return false
	}
	return now.Sub(*latest) < CooldownWindow
}

// remainingMinutes devuelve ceil(restante / 1 minuto), con piso en 0.
func remainingMinutes(latest *time.Time, now time.Time) int {
	if latest == nil {
		return 0
	}
	remaining := CooldownWindow - now.Sub(*latest)
	if remaining <= 0 {
		return 0
	}
	mins := int((remaining + time.Minute - 1) / time.Minute)
	return mins
}

// sessionCache guarda el timestamp del último request emitido en este
// proceso, por (bookingID, type). Existe para que el bloqueo aplique de
// inmediato aunque el log persistido todavía no refleje la escritura.
// Nunca se comparte entre procesos ni se persiste.
type sessionCache struct {
	mu     sync.RWMutex
	issued map[cacheKey]time.Time
}

type cacheKey struct {
	bookingID string
	reqType   RequestType
}

func newSessionCache() *sessionCache {
	return &sessionCache{issued: make(map[cacheKey]time.Time)}
}

func (c *sessionCache) get(bookingID string, t RequestType) *time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ts, ok := c.issued[cacheKey{bookingID: bookingID, reqType: t}]
	if !ok {
		return nil
	}
	return &ts
}

func (c *sessionCache) set(bookingID string, t RequestType, ts time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued[cacheKey{bookingID: bookingID, reqType: t}] = ts
}
