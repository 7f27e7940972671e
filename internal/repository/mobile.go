package repository

import "strings"

// mobileFormatting lists the characters ignored when matching mobile numbers.
var mobileFormatting = strings.NewReplacer("(", "", ")", "", "-", "", " ", "")

// StripMobile removes formatting characters from a mobile number so that
// "(555) 010-2030" and "5550102030" compare equal.
func StripMobile(s string) string {
	return mobileFormatting.Replace(s)
}
