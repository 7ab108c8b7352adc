package utils

import (
	"time"
)

var istLoc *time.Location

func init() {
	var err error
	istLoc, err = time.LoadLocation("Asia/Kolkata")
	if err != nil {
		// Fallback to Local if timezone data is missing
		// In production docker, ensure tzdata is installed
		istLoc = time.Local
	}
}

// GetISTTime returns current time in Indian Standard Time
func GetISTTime() time.Time {
	return time.Now().In(istLoc)
}

// GetLocation returns the IST *time.Location
func GetLocation() *time.Location {
	return istLoc
}
