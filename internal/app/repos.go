package app

import (
	"gorm.io/gorm"

	"ideaboard-backend/internal/logger"
	"ideaboard-backend/internal/repos"
)

type Repos struct {
	Idea    repos.IdeaRepo
	Profile repos.ProfileRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Idea:    repos.NewIdeaRepo(db, log),
		Profile: repos.NewProfileRepo(db, log),
	}
}
