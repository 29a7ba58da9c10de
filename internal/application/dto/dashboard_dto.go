package dto

// DashboardResponse respuesta de GET /api/dashboard con los indicadores del panel.
type DashboardResponse struct {
	TotalUsers         int `json:"totalUsers"`
	TotalTemplates     int `json:"totalTemplates"`
	ActiveInstances    int `json:"activeInstances"`
	FinishedInstances  int `json:"finishedInstances"`
	AverageProgress    int `json:"averageProgress"` // promedio entero sobre instancias activas
	StuckSteps         int `json:"stuckSteps"`
	PendingSuggestions int `json:"pendingSuggestions"`

	// Últimas acciones registradas, más reciente primero.
	RecentActivity []ActivityItem `json:"recentActivity"`
}

// ActivityItem entrada del historial tal como la muestra el panel.
type ActivityItem struct {
	Action    string `json:"action"`
	Actor     string `json:"actor"`
	Timestamp string `json:"timestamp"`
}
