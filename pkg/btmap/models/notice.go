package models

import "strings"

// NoticeBinding holds the notice numbers derived from a sheet name.
// It is attached identically to every row sourced from that sheet.
type NoticeBinding struct {
	// EformsNotices are the new-form notice numbers, zero-stripped, in name order.
	EformsNotices []string `json:"eforms_notices"`
	// SFNotice is the old-form notice number, zero-stripped.
	SFNotice string `json:"sf_notice"`
}

// EformsList renders the new-form notices the way they appear in a sheet name.
func (b NoticeBinding) EformsList() string {
	return strings.Join(b.EformsNotices, ",")
}

// Equal reports whether two bindings name the same notices in the same order.
func (b NoticeBinding) Equal(other NoticeBinding) bool {
	if b.SFNotice != other.SFNotice || len(b.EformsNotices) != len(other.EformsNotices) {
		return false
	}
	for i := range b.EformsNotices {
		if b.EformsNotices[i] != other.EformsNotices[i] {
			return false
		}
	}
	return true
}
