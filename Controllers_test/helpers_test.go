package Controllers_test

import "strconv"

func idParam(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
