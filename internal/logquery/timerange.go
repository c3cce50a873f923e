package logquery

import (
	"github.com/logplatform/backend/internal/models"
)

// AnalyzeTimeRange scans every line of a file and reports the earliest and
// latest timestamps found. Unlike a query it applies no cap. A file without
// any timestamp yields a range with both bounds nil.
func AnalyzeTimeRange(f models.LogFileDescriptor) (models.FileTimeRange, error) {
	result := models.FileTimeRange{FileName: f.Name}

	lr, err := openLineReader(f.Path)
	if err != nil {
		return result, err
	}
	defer lr.Close()

	var earliest, latest string
	for {
		line, ok := lr.next()
		if !ok {
			break
		}
		ts, found := ExtractTimestamp(line)
		if !found {
			continue
		}
		if _, err := ParseTimestamp(ts); err != nil {
			continue
		}
		// Fixed-width layout: string order is time order.
		if earliest == "" || ts < earliest {
			earliest = ts
		}
		if latest == "" || ts > latest {
			latest = ts
		}
	}
	if err := lr.err(); err != nil {
		return result, err
	}

	if earliest != "" {
		t, _ := ParseTimestamp(earliest)
		result.EarliestTime = models.NewTimestamp(t)
		t, _ = ParseTimestamp(latest)
		result.LatestTime = models.NewTimestamp(t)
	}
	return result, nil
}
