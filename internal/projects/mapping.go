package projects

import (
	"database/sql"

	"github.com/MGhunch/dot-file/internal/classification"
	"github.com/MGhunch/dot-file/pkg/query"
	"github.com/MGhunch/dot-file/pkg/repository"
)

var projection = query.NewProjection("projects", "p").
	Field("ID", "id").
	Field("JobNumber", "job_number").
	Field("ClientCode", "client_code").
	Field("Round", "round").
	Field("LastFiledTo", "last_filed_to").
	Field("LatestFolderURL", "latest_folder_url").
	Field("Version", "version").
	Field("UpdatedAt", "updated_at")

const returning = `id, job_number, client_code, round, last_filed_to, latest_folder_url, version, updated_at`

func scanProject(s repository.Scanner) (Project, error) {
	var (
		p         Project
		lastFiled sql.NullString
		folderURL sql.NullString
	)
	err := s.Scan(
		&p.ID,
		&p.JobNumber,
		&p.ClientCode,
		&p.Round,
		&lastFiled,
		&folderURL,
		&p.Version,
		&p.UpdatedAt,
	)
	p.LastFiledTo = classification.Category(lastFiled.String)
	p.LatestFolderURL = folderURL.String
	return p, err
}

func nullableCategory(c *classification.Category) *string {
	if c == nil {
		return nil
	}
	s := string(*c)
	return &s
}
