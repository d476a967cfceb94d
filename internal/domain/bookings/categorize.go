package bookings

import "time"

// Grouped es la partición de bookings para las pestañas de la UI.
type Grouped struct {
	Current  []Booking
	Upcoming []Booking
	Past     []Booking
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// ClassifyOn clasifica un booking en exactamente un bucket, con granularidad
// de medianoche. El orden de evaluación (past, current, resto upcoming)
// garantiza que la partición sea total incluso con combinaciones raras de
// (status, fechas): todo booking cae en exactamente un bucket.
func ClassifyOn(b Booking, today time.Time) Bucket {
	d := midnight(today)

	if b.Status.Terminal() || midnight(b.EndDate).Before(d) {
		return BucketPast
	}

	// No terminal y EndDate >= today a partir de aquí.
	if (b.Status == StatusConfirmed || b.Status == StatusInProgress) && !midnight(b.StartDate).After(d) {
		return BucketCurrent
	}

	// pending, o confirmed con StartDate futura.
	return BucketUpcoming
}

// Categorize agrupa bookings en current/upcoming/past.
// |Current| + |Upcoming| + |Past| == len(items) siempre.
func Categorize(items []Booking, today time.Time) Grouped {
	g := Grouped{
		Current:  make([]Booking, 0),
		Upcoming: make([]Booking, 0),
		Past:     make([]Booking, 0),
	}

	for _, b := range items {
		switch ClassifyOn(b, today) {
		case BucketCurrent:
			g.Current = append(g.Current, b)
		case BucketUpcoming:
			g.Upcoming = append(g.Upcoming, b)
		default:
			g.Past = append(g.Past, b)
		}
	}

	return g
}
