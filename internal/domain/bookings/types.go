package bookings

type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// transitions es la tabla cerrada del ciclo de vida.
// completed y cancelled son terminales: no aparecen como origen.
var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusInProgress, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Bucket es la clasificación derivada para las pestañas de la UI.
type Bucket string

const (
	BucketCurrent  Bucket = "current"
	BucketUpcoming Bucket = "upcoming"
	BucketPast     Bucket = "past"
)
