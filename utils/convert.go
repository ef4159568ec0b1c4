package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ConvertStringToFloat đổi giá trị thời gian Gemini trả về (dạng chuỗi) sang số giây.
// Gemini dùng "N/A" khi không chọn được mốc thời gian => trả 0.
func ConvertStringToFloat(s string) (float64, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" || strings.EqualFold(trimmed, "N/A") {
		return 0, nil
	}
	v, err := strconv.ParseFloat(trimmed, 64)
	if err != nil {
		return 0, fmt.Errorf("không chuyển được %q sang số: %v", s, err)
	}
	return v, nil
}
