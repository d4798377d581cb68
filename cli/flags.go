package cli

import "time"

var (
	verbose    bool
	configPath string

	// for desktop command
	desktopAction    string
	desktopSubAction string
	desktopX         int
	desktopY         int
	desktopText      string
	desktopKey       string
	desktopQuality   int
	desktopMaxSide   int
	desktopSaveDir   string

	// for cluster command
	clusterDSN    string
	clusterFromDB bool
	clusterLimit  int
	clusterStrict bool

	// for neo4j command
	neo4jTimeout time.Duration
)
