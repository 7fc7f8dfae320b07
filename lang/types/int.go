package types

import "strconv"

// Integer is a 64-bit signed integer value.
type Integer int64

var _ Value = Integer(0)

func (i Integer) Kind() Kind     { return KindInteger }
func (i Integer) String() string { return strconv.FormatInt(int64(i), 10) }
