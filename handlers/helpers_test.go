package handlers

import "strconv"

func ptr(v int) *int { return &v }

func itoa(v int) string { return strconv.Itoa(v) }
