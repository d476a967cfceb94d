package notify

import "context"

// Push es una notificación push dirigida a un usuario.
type Push struct {
	UserID string
	Title  string
	Body   string
	Data   map[string]string
}

// Pusher entrega notificaciones push. Best-effort: los callers no deben
// fallar la operación principal si Push devuelve error.
type Pusher interface {
	Push(ctx context.Context, p Push) error
}
