package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Europe/Madrid")
	if err != nil {
		panic(err)
	}
}

// force the federation's timezone so that season/date arithmetic
// is stable no matter where the build runs (CI boxes tend to be UTC)
func Now() time.Time {
	return time.Now().In(Location)
}

// the wire format used by the API for match dates
const MatchTimeLayout = "2006-01-02 15:04:05"

func ParseMatchTime(s string) (time.Time, error) {
	return time.ParseInLocation(MatchTimeLayout, s, Location)
}
