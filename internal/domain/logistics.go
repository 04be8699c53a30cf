package domain

// LogisticsConfig is the single current depot and timing record used to
// parameterize route optimization.
type LogisticsConfig struct {
	DepotAddress           string
	LoadingSecondsPerItem  int
	StopTimeMinutes        int
	UnloadingPaidSeconds   int
	UnloadingUnpaidSeconds int
}
