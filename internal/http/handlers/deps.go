package handlers

import (
	"cellar/internal/config"
	"cellar/internal/repos"
	"cellar/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	Auth             *services.AuthService
	AuthHandler      *AuthHandler
	InventoryHandler *InventoryHandler
	ImportHandler    *ImportHandler
	ExportHandler    *ExportHandler
	CountHandler     *CountHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	wineRepo := repos.NewWineRepo(db)
	locRepo := repos.NewLocationRepo(db)
	invRepo := repos.NewInventoryRepo(db)
	countRepo := repos.NewCountRepo(db)

	invSvc := services.NewInventoryService(invRepo, locRepo)
	importSvc := services.NewImportService(wineRepo, locRepo, invRepo, cfg.UploadDir)
	exportSvc := services.NewExportService(invRepo)
	countSvc := services.NewCountService(invRepo, countRepo)

	return &Deps{
		Auth:             auth,
		AuthHandler:      &AuthHandler{Auth: auth, SecureCookies: cfg.CookieSecure},
		InventoryHandler: &InventoryHandler{Inv: invSvc},
		ImportHandler:    &ImportHandler{Import: importSvc, MaxBytes: int64(cfg.MaxUploadMB) << 20},
		ExportHandler:    &ExportHandler{Export: exportSvc},
		CountHandler:     &CountHandler{Counts: countSvc},
	}
}
