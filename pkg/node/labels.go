package node

import "fmt"

// StatusLabel translates an integer status enum into its human-readable
// label via the supplied table. The mapping is total: codes absent from
// the table render as UNKNOWN(<code>) rather than failing the item.
func StatusLabel(table map[int32]string, code int32) string {
	if label, ok := table[code]; ok {
		return label
	}
	return fmt.Sprintf("UNKNOWN(%d)", code)
}
