package httpdto

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ChangeRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

type CreatePublicChannelRequest struct {
	Name string `json:"name" binding:"required"`
}

type CreatePrivateChannelRequest struct {
	ParticipantIDs []string `json:"participant_ids" binding:"required"`
}
