package transfer

type AdRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Location string `json:"location" validate:"required,oneof=sidebar article-top article-bottom in-article-1 in-article-2 in-article-3 in-article-4 in-article-5"`
	SlotID   string `json:"slot_id" validate:"required,numeric,max=20"`
	Format   string `json:"format" validate:"omitempty,oneof=auto horizontal vertical rectangle fluid"`
	IsActive *bool  `json:"is_active"`
}

type AdSettingsRequest struct {
	ClientID      string `json:"client_id" validate:"omitempty,startswith=ca-pub-"`
	Sidebar       string `json:"sidebar" validate:"omitempty,numeric"`
	ArticleTop    string `json:"article_top" validate:"omitempty,numeric"`
	InArticle1    string `json:"in_article_1" validate:"omitempty,numeric"`
	InArticle2    string `json:"in_article_2" validate:"omitempty,numeric"`
	InArticle3    string `json:"in_article_3" validate:"omitempty,numeric"`
	InArticle4    string `json:"in_article_4" validate:"omitempty,numeric"`
	InArticle5    string `json:"in_article_5" validate:"omitempty,numeric"`
	ArticleBottom string `json:"article_bottom" validate:"omitempty,numeric"`
	IsActive      bool   `json:"is_active"`
}
