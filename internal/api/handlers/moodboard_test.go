package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/hugh/muse/internal/api/dto"
	"github.com/hugh/muse/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoodBoardHandler(t *testing.T) {
	env := setupTestRouter(t)
	event := testutil.CreateTestEvent(t, env.DB, env.Couple.ID, "malka")
	media := testutil.CreateTestMedia(t, env.DB, env.Couple.ID)
	boardPath := fmt.Sprintf("/api/moodboard/%d/", event.ID)

	t.Run("get creates an enabled board", func(t *testing.T) {
		rr := env.do(t, "GET", boardPath, nil, env.Token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var board dto.MoodBoardDTO
		testutil.DecodeEnvelope(t, rr, &board)
		assert.Equal(t, event.ID, board.Event)
		assert.True(t, board.IsEnabled)
		assert.Empty(t, board.Items)
	})

	var item dto.MoodBoardItemDTO

	t.Run("add item", func(t *testing.T) {
		rr := env.do(t, "POST", boardPath+"items/", map[string]interface{}{
			"media_id": media.ID,
			"caption":  "  Gold and blush  ",
			"position": 1,
		}, env.Token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

		testutil.DecodeEnvelope(t, rr, &item)
		assert.Equal(t, "Gold and blush", item.Caption)
		require.NotNil(t, item.Media)
		assert.Equal(t, media.ID, item.Media.ID)
		require.NotNil(t, item.Position)
		assert.Equal(t, 1, *item.Position)
		assert.Empty(t, item.Reactions)
	})

	t.Run("media must belong to the couple", func(t *testing.T) {
		_, outsiderCouple, _ := env.NewOutsider(t)
		foreign := testutil.CreateTestMedia(t, env.DB, outsiderCouple.ID)

		rr := env.do(t, "POST", boardPath+"items/", map[string]interface{}{"media_id": foreign.ID}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, testutil.DecodeEnvelope(t, rr, nil), "media_id:")
	})

	t.Run("media_id is required", func(t *testing.T) {
		rr := env.do(t, "POST", boardPath+"items/", map[string]string{"caption": "x"}, env.Token)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	reactionsPath := fmt.Sprintf("/api/moodboard/items/%d/reactions/", item.ID)

	t.Run("reactions count once per user and type", func(t *testing.T) {
		rr := env.do(t, "POST", reactionsPath, nil, env.Token)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		rr = env.do(t, "POST", reactionsPath, map[string]string{"reaction_type": "heart"}, env.Token)
		require.Equal(t, http.StatusCreated, rr.Code)
		rr = env.do(t, "POST", reactionsPath, map[string]string{"reaction_type": "fire"}, env.Token)
		require.Equal(t, http.StatusCreated, rr.Code)

		var got dto.MoodBoardItemDTO
		testutil.DecodeEnvelope(t, rr, &got)
		assert.Equal(t, map[string]int{"heart": 1, "fire": 1}, got.Reactions)
	})

	t.Run("remove reaction", func(t *testing.T) {
		rr := env.do(t, "DELETE", reactionsPath+"?reaction_type=fire", nil, env.Token)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var got dto.MoodBoardItemDTO
		testutil.DecodeEnvelope(t, rr, &got)
		assert.Equal(t, map[string]int{"heart": 1}, got.Reactions)
	})

	t.Run("board lists items with reactions", func(t *testing.T) {
		rr := env.do(t, "GET", boardPath, nil, env.Token)
		var board dto.MoodBoardDTO
		testutil.DecodeEnvelope(t, rr, &board)
		require.Len(t, board.Items, 1)
		assert.Equal(t, 1, board.Items[0].Reactions["heart"])
	})

	t.Run("other couple cannot touch the item", func(t *testing.T) {
		_, _, token := env.NewOutsider(t)
		rr := env.do(t, "DELETE", fmt.Sprintf("/api/moodboard/items/%d/", item.ID), nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		rr = env.do(t, "POST", reactionsPath, nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
		rr = env.do(t, "GET", boardPath, nil, token)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("soft delete hides the item", func(t *testing.T) {
		rr := env.do(t, "DELETE", fmt.Sprintf("/api/moodboard/items/%d/", item.ID), nil, env.Token)
		require.Equal(t, http.StatusOK, rr.Code)

		rr = env.do(t, "GET", boardPath, nil, env.Token)
		var board dto.MoodBoardDTO
		testutil.DecodeEnvelope(t, rr, &board)
		assert.Empty(t, board.Items)
	})
}
