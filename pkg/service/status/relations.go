package status

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/canonical/jhack/pkg/model"
)

// Relations reads the `Relation provider` section of a tabular juju status.
func Relations(raw string) []model.RelationRow {
	var rows []model.RelationRow
	inSection := false
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(line, "Relation provider") {
			inSection = true
			continue
		}
		if !inSection {
			continue
		}
		if strings.TrimSpace(line) == "" {
			break
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		row := model.RelationRow{Provider: fields[0], Requirer: fields[1]}
		if len(fields) > 2 {
			row.Interface = fields[2]
		}
		if len(fields) > 3 {
			row.Type = fields[3]
		}
		if len(fields) > 4 {
			row.Message = strings.Join(fields[4:], " ")
		}
		rows = append(rows, row)
	}
	return rows
}

// Interface returns the interface name of the relation between the two endpoints, in either order.
func Interface(raw, app, endpoint, otherApp, otherEndpoint string) (string, error) {
	a := regexp.QuoteMeta(app + ":" + endpoint)
	b := regexp.QuoteMeta(otherApp + ":" + otherEndpoint)
	re := regexp.MustCompile(fmt.Sprintf(`(?m)(?:^%s\s+%s|^%s\s+%s)\s+([\w\-]+)`, a, b, b, a))
	match := re.FindStringSubmatch(raw)
	if match == nil {
		return "", fmt.Errorf("no relation between %s:%s and %s:%s in status", app, endpoint, otherApp, otherEndpoint)
	}
	return match[1], nil
}
