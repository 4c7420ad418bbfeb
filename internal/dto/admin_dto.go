package dto

type CreateUserInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"omitempty,min=8"`
	Role     string `json:"role" binding:"required,oneof=community_member moderator admin guest"`
}

// GrantsPatch mutates individual permission flags without touching the
// others. Role edits never pass through here; the two are independent.
type GrantsPatch struct {
	CanPost        *bool `json:"can_post"`
	CanComment     *bool `json:"can_comment"`
	CanModerate    *bool `json:"can_moderate"`
	CanManageUsers *bool `json:"can_manage_users"`
}

type UpdateUserInput struct {
	Username string       `json:"username" binding:"omitempty,min=3,max=50"`
	Email    string       `json:"email" binding:"omitempty,email"`
	Role     string       `json:"role" binding:"omitempty,oneof=community_member moderator admin guest"`
	Grants   *GrantsPatch `json:"grants"`
}
