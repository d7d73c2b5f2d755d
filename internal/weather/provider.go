package weather

import "context"

// Adapter turns one provider's upstream payload into a normalized observation
// (e.g. YR via MET Norway, DMI via Open-Meteo).
type Adapter interface {
	Name() string
	FetchObservation(ctx context.Context, coord Coordinate) (Observation, error)
}
