package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

type TickMetrics struct {
	Tick       int  `json:"tick"`
	Total      uint `json:"total"`
	Successful uint `json:"successful"`
	Adapted    uint `json:"adapted"`
}

type GenerationDiagnostics struct {
	Generation   int     `json:"generation"`
	BestFitness  float64 `json:"best_fitness"`
	MeanFitness  float64 `json:"mean_fitness"`
	MinFitness   float64 `json:"min_fitness"`
	GoalCount    int     `json:"goal_count"`
	LiveCount    int     `json:"live_count"`
	RetiredCount int     `json:"retired_count"`
}

type TopUnitRecord struct {
	Rank            int     `json:"rank"`
	AgentID         string  `json:"agent_id"`
	Fitness         float64 `json:"fitness"`
	Pattern         uint64  `json:"pattern"`
	Mask            uint64  `json:"mask"`
	ActivationCount uint32  `json:"activation_count"`
	ReachedGoal     bool    `json:"reached_goal"`
}

type AgentSnapshot struct {
	ID              string `json:"id"`
	Position        string `json:"position"`
	Pattern         uint64 `json:"pattern"`
	Mask            uint64 `json:"mask"`
	ActivationCount uint32 `json:"activation_count"`
	Alive           bool   `json:"alive"`
	ReachedGoal     bool   `json:"reached_goal"`
}

type WorldSummary struct {
	VersionedRecord
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Rows        int     `json:"rows"`
	Cols        int     `json:"cols"`
	ExitCount   int     `json:"exit_count"`
	BestFitness float64 `json:"best_fitness"`
}

type RunRecord struct {
	VersionedRecord
	ID                 string          `json:"id"`
	World              string          `json:"world"`
	Seed               int64           `json:"seed"`
	Population         int             `json:"population"`
	Generations        int             `json:"generations"`
	TicksPerGeneration int             `json:"ticks_per_generation"`
	BestFitness        float64         `json:"best_fitness"`
	GoalsReached       uint            `json:"goals_reached"`
	Agents             []AgentSnapshot `json:"agents,omitempty"`
	CompletedAt        string          `json:"completed_at"`
}
