package registry

import "fleet-dispatch-backend/internal/store"

// FeedResponse models the top-level structure of the fleet registry's feed.
type FeedResponse struct {
	Code int `json:"code"`
	Data struct {
		Vehicles []store.VehicleItem `json:"vehicles"`
		Drivers  []store.DriverItem  `json:"drivers"`
	} `json:"data"`
}
