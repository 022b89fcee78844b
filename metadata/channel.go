package metadata

import (
	"fmt"
	"strings"
)

// parseChannels extracts the channel definitions from the multi-line
// DATA_INFO table. The first line is the column header; every later
// row with more than one whitespace-separated token declares one
// channel as (index, name, unit, direction, ...). Underscores in
// names stand in for spaces. Only channels recorded in both scan
// directions are supported.
func parseChannels(info string) ([]Channel, error) {
	var channels []Channel

	for i, line := range strings.Split(info, "\n") {
		fields := strings.Fields(line)
		if i == 0 || len(fields) < 2 {
			continue
		}
		if len(fields) < 4 {
			return nil, &MalformedFieldError{keyDataInfo, fmt.Sprintf("short channel row %q", line)}
		}
		if !strings.EqualFold(fields[3], "both") {
			return nil, &UnsupportedDirectionError{Row: line}
		}
		channels = append(channels, Channel{
			Name: strings.ReplaceAll(fields[1], "_", " "),
			Unit: fields[2],
		})
	}

	if len(channels) == 0 {
		return nil, &MalformedFieldError{keyDataInfo, "no channels defined"}
	}

	return channels, nil
}
