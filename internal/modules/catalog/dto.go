package catalog

type CreateRoomRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	City        string `json:"city" binding:"required"`
	Address     string `json:"address"`
	Rent        int64  `json:"rent" binding:"required,gt=0"` // monthly, minor units
}

type ListQuery struct {
	City   string `form:"city"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}
