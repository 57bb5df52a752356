package rooms

type createRoomRequest struct {
	MovieID  string `json:"movieId"`
	HostName string `json:"hostName"`
}
