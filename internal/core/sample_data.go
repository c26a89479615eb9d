package core

import (
	"fmt"

	"fleetcore/pkg/domain"
)

// SampleFleet returns the fixed demo fleet used for demos and tests. The
// content is deterministic: the same ids and values on every invocation.
func SampleFleet() []Ship {
	return []Ship{
		sample("SHIP001", "Ocean Star", 1000, 18, 150),
		sample("SHIP002", "Sea Dragon", 1500, 20, 180),
		sample("SHIP003", "Wave Rider", 800, 16, 120),
		sample("SHIP004", "Port Master", 2000, 22, 200),
		sample("SHIP005", "Cargo King", 1200, 19, 160),
	}
}

func sample(id, name string, capacity, speed, fuel float64) Ship {
	return Ship{
		Base:              Base{ID: id},
		Name:              name,
		CapacityTEU:       capacity,
		SpeedKnots:        speed,
		FuelLitersPerHour: fuel,
		Class:             domain.ClassContainer,
		Status:            domain.StatusAvailable,
	}
}

// SamplePorts returns the fixed demo harbours, Japanese container ports with
// deterministic coordinates and berth counts.
func SamplePorts() []Port {
	return []Port{
		samplePort("PORT001", "東京港", 35.6295, 139.7431, 3),
		samplePort("PORT002", "横浜港", 35.4437, 139.6380, 4),
		samplePort("PORT003", "大阪港", 34.6518, 135.4222, 2),
		samplePort("PORT004", "神戸港", 34.6901, 135.1956, 3),
		samplePort("PORT005", "名古屋港", 35.0839, 136.8849, 2),
	}
}

func samplePort(id, name string, lat, lon float64, berths int) Port {
	return Port{
		Base:      Base{ID: id},
		Name:      name,
		Latitude:  lat,
		Longitude: lon,
		Berths:    DefaultBerths(id, berths),
	}
}

// Default berth dimensions applied when a port is created by count alone.
const (
	DefaultBerthCapacityTEU     = 100
	DefaultBerthHandlingRateTEU = 20
)

// DefaultBerths builds n berths with default capacity and handling rate,
// numbered <portID>_B1 through <portID>_Bn.
func DefaultBerths(portID string, n int) []Berth {
	berths := make([]Berth, 0, n)
	for i := 0; i < n; i++ {
		berths = append(berths, Berth{
			ID:              fmt.Sprintf("%s_B%d", portID, i+1),
			CapacityTEU:     DefaultBerthCapacityTEU,
			HandlingRateTEU: DefaultBerthHandlingRateTEU,
		})
	}
	return berths
}
