package handlers

import (
	"campusmarket/internal/config"
	"campusmarket/internal/services"
)

type Deps struct {
	Auth *services.AuthService

	AuthHandler      *AuthHandler
	ItemHandler      *ItemHandler
	DashboardHandler *DashboardHandler
	FavoriteHandler  *FavoriteHandler
	CartHandler      *CartHandler
	InterestHandler  *InterestHandler
	ReviewHandler    *ReviewHandler
	CatalogHandler   *CatalogHandler
	AdminHandler     *AdminHandler
}

func NewDeps(env *services.Env, cfg config.Config) *Deps {
	authSvc := services.NewAuthService(env, cfg.JWTSecret, cfg.JWTTTL, cfg.BcryptCost)
	itemSvc := services.NewItemService(env)
	reviewSvc := services.NewReviewService(env)

	return &Deps{
		Auth:             authSvc,
		AuthHandler:      &AuthHandler{Auth: authSvc, CookieSecure: cfg.CookieSecure},
		ItemHandler:      &ItemHandler{Items: itemSvc},
		DashboardHandler: &DashboardHandler{Dashboard: services.NewDashboardService(env)},
		FavoriteHandler:  &FavoriteHandler{Favorites: services.NewFavoriteService(env)},
		CartHandler:      &CartHandler{Cart: services.NewCartService(env)},
		InterestHandler:  &InterestHandler{Interests: services.NewInterestService(env)},
		ReviewHandler:    &ReviewHandler{Reviews: reviewSvc},
		CatalogHandler:   &CatalogHandler{Catalog: services.NewCatalogService(env)},
		AdminHandler:     &AdminHandler{Admin: services.NewAdminService(env), Items: itemSvc},
	}
}
