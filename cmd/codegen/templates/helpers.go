package templates

import (
	"fmt"
	"strconv"
	"strings"
)

func prefixedStrings(prefix string, count int) string {
	var sb strings.Builder
	for i := 0; i < count; i++ {
		sb.WriteString(prefix)
		sb.WriteString(strconv.Itoa(i))
		if i < count-1 {
			sb.WriteString(", ")
		}
	}
	return sb.String()
}

// typeParams renders "[A0, A1 any]", or nothing for count 0.
func typeParams(count int) string {
	if count == 0 {
		return ""
	}
	return "[" + prefixedStrings("A", count) + " any]"
}

// typeArgs renders "[A0, A1]", or nothing for count 0.
func typeArgs(count int) string {
	if count == 0 {
		return ""
	}
	return "[" + prefixedStrings("A", count) + "]"
}

func params(count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = fmt.Sprintf("a%d A%d", i, i)
	}
	return strings.Join(parts, ", ")
}

func typeOfs(count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = fmt.Sprintf("TypeOf[A%d]()", i)
	}
	return strings.Join(parts, ", ")
}
