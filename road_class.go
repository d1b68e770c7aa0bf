package roadgrade

type RoadClass uint16

const (
	ROAD_CLASS_MOTORWAY = RoadClass(iota + 1)
	ROAD_CLASS_TRUNK
	ROAD_CLASS_PRIMARY
	ROAD_CLASS_SECONDARY
	ROAD_CLASS_TERTIARY
	ROAD_CLASS_RESIDENTIAL
	ROAD_CLASS_SERVICE
	ROAD_CLASS_TRACK
	ROAD_CLASS_ROUNDABOUT_RING
	ROAD_CLASS_UNCLASSIFIED
)

func (iotaIdx RoadClass) String() string {
	return [...]string{"motorway", "trunk", "primary", "secondary", "tertiary", "residential", "service", "track", "roundabout_ring", "unclassified"}[iotaIdx-1]
}

var (
	roadClasses = map[string]RoadClass{
		"motorway":        ROAD_CLASS_MOTORWAY,
		"trunk":           ROAD_CLASS_TRUNK,
		"primary":         ROAD_CLASS_PRIMARY,
		"secondary":       ROAD_CLASS_SECONDARY,
		"tertiary":        ROAD_CLASS_TERTIARY,
		"residential":     ROAD_CLASS_RESIDENTIAL,
		"service":         ROAD_CLASS_SERVICE,
		"track":           ROAD_CLASS_TRACK,
		"roundabout_ring": ROAD_CLASS_ROUNDABOUT_RING,
		"unclassified":    ROAD_CLASS_UNCLASSIFIED,
	}

	// defaultPriorityByRoadClass Wider and busier road classes win junction elevation conflicts
	defaultPriorityByRoadClass = map[RoadClass]int{
		ROAD_CLASS_MOTORWAY:        10,
		ROAD_CLASS_TRUNK:           8,
		ROAD_CLASS_PRIMARY:         7,
		ROAD_CLASS_SECONDARY:       5,
		ROAD_CLASS_TERTIARY:        4,
		ROAD_CLASS_RESIDENTIAL:     3,
		ROAD_CLASS_SERVICE:         2,
		ROAD_CLASS_TRACK:           1,
		ROAD_CLASS_ROUNDABOUT_RING: 6,
		ROAD_CLASS_UNCLASSIFIED:    2,
	}

	defaultWidthByRoadClass = map[RoadClass]float64{
		ROAD_CLASS_MOTORWAY:        14.0,
		ROAD_CLASS_TRUNK:           12.0,
		ROAD_CLASS_PRIMARY:         10.0,
		ROAD_CLASS_SECONDARY:       8.0,
		ROAD_CLASS_TERTIARY:        7.0,
		ROAD_CLASS_RESIDENTIAL:     6.0,
		ROAD_CLASS_SERVICE:         4.0,
		ROAD_CLASS_TRACK:           3.0,
		ROAD_CLASS_ROUNDABOUT_RING: 7.0,
		ROAD_CLASS_UNCLASSIFIED:    5.0,
	}
)

func getRoadClass(str string) RoadClass {
	if found, ok := roadClasses[str]; ok {
		return found
	}
	return 0
}

// DefaultPriority returns elevation conflict priority for road class
func (iotaIdx RoadClass) DefaultPriority() int {
	if priority, ok := defaultPriorityByRoadClass[iotaIdx]; ok {
		return priority
	}
	return defaultPriorityByRoadClass[ROAD_CLASS_UNCLASSIFIED]
}

// DefaultWidth returns road surface width (meters) for road class
func (iotaIdx RoadClass) DefaultWidth() float64 {
	if width, ok := defaultWidthByRoadClass[iotaIdx]; ok {
		return width
	}
	return defaultWidthByRoadClass[ROAD_CLASS_UNCLASSIFIED]
}
