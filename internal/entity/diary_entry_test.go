package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiaryEntry_TechList(t *testing.T) {
	e := DiaryEntry{Technologies: " Python, Django ,, pytest ,"}
	assert.Equal(t, []string{"Python", "Django", "pytest"}, e.TechList())

	empty := DiaryEntry{}
	assert.Empty(t, empty.TechList())
}

func TestDiaryEntry_String(t *testing.T) {
	e := DiaryEntry{
		Date:  time.Date(2023, 5, 15, 0, 0, 0, 0, time.UTC),
		Title: "Test Entry",
	}
	assert.Equal(t, "2023-05-15: Test Entry", e.String())
}
