package services

import (
	"time"

	"github.com/adi-253/roomline/internal/models"
)

// DemoUser is the member every seeded room already contains.
var DemoUser = models.Participant{UserID: 1, Nickname: "현재사용자"}

// SeedParticipants are the users the demo rooms are seeded with.
var SeedParticipants = []models.Participant{
	DemoUser,
	{UserID: 2, Nickname: "길동이"},
	{UserID: 3, Nickname: "철수"},
	{UserID: 4, Nickname: "영희"},
	{UserID: 5, Nickname: "민수"},
}

// Seed fills the services with the demo rooms used by the mock directory
// and a fresh dev server.
func Seed(rooms *RoomService, messages *MessageService, proposals *ProposalService) {
	rooms.AddRoom(models.Room{
		RoomID:      1,
		Title:       "부천역 소음 문제에 대해 논의해봅시다",
		Region:      "BUCHEON",
		Description: "부천역 근처 소음 문제를 함께 논의하고 해결 방안을 모색합니다.",
		AccessLevel: models.AccessPublic,
	}, SeedParticipants[:4]...)
	rooms.AddRoom(models.Room{
		RoomID:      2,
		Title:       "공원 시설 개선 논의",
		Region:      "BUCHEON",
		Description: "지역 공원의 시설 개선에 대한 의견을 나눕니다.",
		AccessLevel: models.AccessPublic,
	}, DemoUser, SeedParticipants[4])
	rooms.AddRoom(models.Room{
		RoomID:      3,
		Title:       "교통 체증 해결 방안",
		Region:      "SEOUL",
		Description: "출퇴근 시간 교통 체증 개선 방안을 논의합니다.",
		AccessLevel: models.AccessPublic,
	}, DemoUser)

	messages.Import(1,
		seedMessage(1, 2, "길동이", "안녕하세요! 부천역 소음 문제가 심각한 것 같아요.", "2025-11-09T10:30:00Z"),
		seedMessage(2, 3, "철수", "저도 같은 생각입니다. 특히 저녁 시간대가 심한 것 같아요.", "2025-11-09T10:32:00Z"),
		seedMessage(3, 4, "영희", "방음벽 설치를 제안해보는 건 어떨까요?", "2025-11-09T10:35:00Z"),
		seedMessage(4, 1, "현재사용자", "좋은 의견이네요! 제안서를 작성해볼까요?", "2025-11-09T10:40:00Z"),
	)
	messages.Import(2,
		seedMessage(5, 5, "민수", "공원 벤치가 많이 낡았더라고요.", "2025-11-09T09:00:00Z"),
	)

	_, _ = proposals.Create(models.ProposalPayload{
		Title:  "부천역 방음벽 설치 제안",
		RoomID: 1,
	})
}

func seedMessage(id, userID int64, nickname, content, sentAt string) models.ChatMessage {
	ts, _ := time.Parse(time.RFC3339, sentAt)
	return models.ChatMessage{
		MessageID:      id,
		SenderNickname: nickname,
		Content:        content,
		SentAt:         ts,
		UserID:         &userID,
	}
}
