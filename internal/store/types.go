package store

// VehicleItem represents a single vehicle record from the upstream registry feed.
type VehicleItem struct {
	ID            string `json:"id"`
	VehicleNumber string `json:"vehicleNumber"`
	VehicleType   string `json:"vehicleType"`
	Capacity      int    `json:"capacity"`
	Active        bool   `json:"active"`
}

// DriverItem represents a single driver record from the upstream registry feed.
type DriverItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	LicenseNo string `json:"licenseNo"`
	Active    bool   `json:"active"`
}
