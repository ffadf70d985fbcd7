package repositories

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"testing"

	"chat-sync/domain"
	"chat-sync/errors"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

const (
	alice domain.UserID = 1
	bob   domain.UserID = 2
	carol domain.UserID = 3
)

func ids(messages []domain.Message) []domain.MessageID {
	return lo.Map(messages, func(m domain.Message, _ int) domain.MessageID { return m.ID })
}

func Test_StoreMessage_Assigns_Increasing_IDs(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	first, err := repository.StoreMessage(alice, bob, "hi")
	req.NoError(err)
	second, err := repository.StoreMessage(bob, alice, "hello")
	req.NoError(err)
	other, err := repository.StoreMessage(alice, carol, "hey")
	req.NoError(err)

	req.Equal(domain.MessageID(1), first.ID)
	req.Equal(domain.MessageID(2), second.ID)
	req.Equal(domain.MessageID(3), other.ID)

	req.Equal(alice, first.SenderID)
	req.Equal(bob, first.ReceiverID)
	req.Equal("hi", first.Content)
	req.False(first.CreatedAt.IsZero())
	req.Nil(first.DeletedAt)
}

func Test_StoreMessage_Concurrent_IDs_Are_Unique(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	results := make(chan domain.MessageID, writers*perWriter)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				m, err := repository.StoreMessage(domain.UserID(w%2+1), domain.UserID(w%3+1), fmt.Sprintf("%d-%d", w, i))
				if err == nil {
					results <- m.ID
				}
			}
		}(w)
	}
	wg.Wait()
	close(results)

	seen := map[domain.MessageID]bool{}
	for id := range results {
		req.False(seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	req.Len(seen, writers*perWriter)
	for id := domain.MessageID(1); id <= writers*perWriter; id++ {
		req.True(seen[id], "missing id %d", id)
	}
}

func Test_LatestMessages_Returns_Most_Recent_In_Ascending_Order(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	for i := 1; i <= 10; i++ {
		sender, receiver := alice, bob
		if i%2 == 0 {
			sender, receiver = bob, alice
		}
		_, err := repository.StoreMessage(sender, receiver, fmt.Sprintf("message %d", i))
		req.NoError(err)
		// Noise in another conversation must never leak in.
		_, err = repository.StoreMessage(alice, carol, "noise")
		req.NoError(err)
	}

	key := domain.NewConversationKey(alice, bob)
	page, err := repository.LatestMessages(key, 3)
	req.NoError(err)
	req.Len(page, 3)
	req.Equal("message 8", page[0].Content)
	req.Equal("message 10", page[2].Content)
	req.IsIncreasing(ids(page))

	all, err := repository.LatestMessages(key, 200)
	req.NoError(err)
	req.Len(all, 10)
	req.Equal("message 1", all[0].Content)
	req.IsIncreasing(ids(all))

	empty, err := repository.LatestMessages(domain.NewConversationKey(bob, carol), 50)
	req.NoError(err)
	req.Empty(empty)
}

func Test_LatestMessages_Is_Symmetric(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	_, err := repository.StoreMessage(alice, bob, "one")
	req.NoError(err)
	_, err = repository.StoreMessage(bob, alice, "two")
	req.NoError(err)

	fromAlice, err := repository.LatestMessages(domain.NewConversationKey(alice, bob), 50)
	req.NoError(err)
	fromBob, err := repository.LatestMessages(domain.NewConversationKey(bob, alice), 50)
	req.NoError(err)
	req.Equal(fromAlice, fromBob)
	req.Len(fromAlice, 2)
}

func Test_MessagesSince_Is_Exclusive_And_Capped(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	key := domain.NewConversationKey(alice, bob)

	for i := 1; i <= 7; i++ {
		_, err := repository.StoreMessage(alice, bob, fmt.Sprintf("m%d", i))
		req.NoError(err)
	}

	since, err := repository.MessagesSince(key, 3, 200)
	req.NoError(err)
	req.Equal([]domain.MessageID{4, 5, 6, 7}, ids(since))

	capped, err := repository.MessagesSince(key, 0, 2)
	req.NoError(err)
	req.Equal([]domain.MessageID{1, 2}, ids(capped))

	// Draining by re-polling from the last id reaches every message.
	cursor := domain.MessageID(0)
	var drained []domain.MessageID
	for {
		batch, err := repository.MessagesSince(key, cursor, 2)
		req.NoError(err)
		if len(batch) == 0 {
			break
		}
		drained = append(drained, ids(batch)...)
		cursor = domain.LastID(batch, cursor)
	}
	req.Equal([]domain.MessageID{1, 2, 3, 4, 5, 6, 7}, drained)

	none, err := repository.MessagesSince(key, 7, 200)
	req.NoError(err)
	req.Empty(none)

	beyond, err := repository.MessagesSince(key, math.MaxInt64, 200)
	req.NoError(err)
	req.Empty(beyond)
}

func Test_SoftDelete_Only_By_Sender_Once(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())
	key := domain.NewConversationKey(alice, bob)

	message, err := repository.StoreMessage(alice, bob, "hi")
	req.NoError(err)
	kept, err := repository.StoreMessage(bob, alice, "still here")
	req.NoError(err)

	affected, err := repository.SoftDelete(message.ID, bob)
	req.NoError(err)
	req.False(affected, "the receiver cannot delete")

	affected, err = repository.SoftDelete(message.ID, alice)
	req.NoError(err)
	req.True(affected)

	affected, err = repository.SoftDelete(message.ID, alice)
	req.NoError(err)
	req.False(affected, "second delete affects nothing")

	affected, err = repository.SoftDelete(999, alice)
	req.NoError(err)
	req.False(affected)

	stored, err := repository.GetMessage(message.ID)
	req.NoError(err)
	req.NotNil(stored.DeletedAt)
	req.Equal("hi", stored.Content)

	history, err := repository.LatestMessages(key, 50)
	req.NoError(err)
	req.Equal([]domain.MessageID{kept.ID}, ids(history))

	since, err := repository.MessagesSince(key, 0, 200)
	req.NoError(err)
	req.Equal([]domain.MessageID{kept.ID}, ids(since))

	// Ids stay stable: the next message does not reuse the deleted id.
	next, err := repository.StoreMessage(alice, bob, "after")
	req.NoError(err)
	req.Equal(domain.MessageID(3), next.ID)
}

func Test_SoftDelete_Concurrent_Reports_Success_Once(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	message, err := repository.StoreMessage(alice, bob, "race")
	req.NoError(err)

	var wg sync.WaitGroup
	outcomes := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			affected, err := repository.SoftDelete(message.ID, alice)
			if err == nil {
				outcomes <- affected
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	successes := 0
	for affected := range outcomes {
		if affected {
			successes++
		}
	}
	req.Equal(1, successes)
}

func Test_GetMessage_Not_Found(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	_, err := repository.GetMessage(42)
	req.ErrorIs(err, errors.ErrMessageNotFound)
}

func Test_Message_Codec_Roundtrip_Keeps_Unicode(t *testing.T) {
	req := require.New(t)
	repository := NewMessageRepository(openTestDB(t), slog.Default())

	stored, err := repository.StoreMessage(alice, bob, "héllo 👋 ça va ?")
	req.NoError(err)
	req.Equal("héllo 👋 ça va ?", stored.Content)
}
