package mux

import "net/http"

type createGameResponse struct {
	GameID string `json:"gameId"`
}

func (m *Mux) postGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, err := m.manager.CreateGame(r.Context())
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, err)
			return
		}

		writeJSON(w, http.StatusCreated, createGameResponse{GameID: gameID})
	}
}
