package domain

// GraphQueryType selects the explorer mode.
type GraphQueryType string

const (
	QueryFull         GraphQueryType = "full"
	QueryNeighborhood GraphQueryType = "neighborhood"
	QueryCluster      GraphQueryType = "cluster"
)

type GraphQuery struct {
	Type         GraphQueryType `json:"query_type"`
	CenterEntity string         `json:"center_entity,omitempty"`
	Depth        int            `json:"depth"`
	MaxNodes     int            `json:"max_nodes"`
}

// Node and Edge are query-time projections of the statement store; they are
// recomputed per query and never persisted.
type Node struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Type       string            `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

type Edge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Relationship string `json:"relationship"`
}

type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// GraphResult is the explorer response: the projected subgraph, analytics
// over it, and whether a traversal limit cut the expansion short.
type GraphResult struct {
	Graph     Graph          `json:"graph"`
	Analytics GraphAnalytics `json:"analytics"`
	Truncated bool           `json:"truncated"`
}

type GraphAnalytics struct {
	TotalNodes    int            `json:"total_nodes"`
	TotalEdges    int            `json:"total_edges"`
	AverageDegree float64        `json:"average_degree"`
	Density       float64        `json:"density"`
	TypeHistogram map[string]int `json:"type_histogram"`
	MostConnected []NodeDegree   `json:"most_connected"`
}

type NodeDegree struct {
	ID     string `json:"id"`
	Degree int    `json:"degree"`
}

// SearchMode selects the search strategy.
type SearchMode string

const (
	SearchSemantic SearchMode = "semantic"
	SearchTextual  SearchMode = "textual"
	SearchHybrid   SearchMode = "hybrid"
)

type SearchQuery struct {
	Term   string       `json:"query"`
	Mode   SearchMode   `json:"search_type"`
	Filter SearchFilter `json:"filters,omitempty"`
	Limit  int          `json:"limit,omitempty"`
}

type SearchFilter struct {
	Class string `json:"class,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

type SearchResult struct {
	Entity     Artifact `json:"entity"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"`
}
