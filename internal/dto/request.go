package dto

type ListCompetitionsQuery struct {
	City     string `query:"city"`
	From     string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	OpenOnly bool   `query:"open"`
	Limit    int    `query:"limit" validate:"omitempty,gte=1,lte=100"`
}
