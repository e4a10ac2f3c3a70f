// Package sources registers the three verification inputs with the core
// source registry. Column and label names come from configuration, so
// registration happens once at startup rather than in init.
package sources

import (
	"github.com/JonMunkholm/rostercheck/internal/config"
	"github.com/JonMunkholm/rostercheck/internal/core"
)

// Register adds the registration, student and course sources.
// Panics if called twice without core.ClearSources in between.
func Register(cfg config.SourcesConfig) {
	registerRegistrations(cfg)
	registerStudents(cfg)
	registerCourses(cfg)
}

func registerRegistrations(cfg config.SourcesConfig) {
	core.Register(core.SourceDefinition{
		Key:    core.SourceRegistrations,
		Label:  "履修登録",
		Format: core.FormatCSV,
		Order:  1,
		Columns: []string{
			cfg.RegistrationStudentID,
			cfg.RegistrationCourseID,
			cfg.RegistrationDeletion,
		},
	})
}

func registerStudents(cfg config.SourcesConfig) {
	core.Register(core.SourceDefinition{
		Key:    core.SourceStudents,
		Label:  "学生名簿",
		Format: core.FormatCSV,
		Order:  2,
		Columns: []string{
			cfg.StudentID,
			cfg.StudentName,
			cfg.StudentSchoolEmail,
			cfg.StudentPersonalEmail,
		},
	})
}

func registerCourses(cfg config.SourcesConfig) {
	core.Register(core.SourceDefinition{
		Key:    core.SourceCourses,
		Label:  "科目別名簿",
		Format: core.FormatXLSX,
		Order:  3,
		Columns: []string{
			cfg.CourseIDLabel,
			cfg.CourseNameLabel,
			cfg.CourseStudentIDLabel,
		},
	})
}
