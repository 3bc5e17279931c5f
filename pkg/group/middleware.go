package group

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jivetime/jivetime/internal/rest"
	log "github.com/sirupsen/logrus"
)

// Middleware loads the group named by the {groupId} path variable and stores it in the
// request context. Requests for unknown groups end with 404.
func Middleware(service Service) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			groupId, err := rest.IntVar(r, "groupId")
			if err != nil {
				rest.WriteError(w, http.StatusBadRequest, "Invalid group id", err.Error())
				return
			}

			g, err := service.Get(r.Context(), groupId)
			if err != nil {
				if errors.Is(err, ErrGroupNotFound) {
					log.Debugf("event group not found: %d", groupId)
					rest.WriteError(w, http.StatusNotFound, "Event group not found", "")
					return
				}
				log.Errorf("failed to get event group %d: %v", groupId, err)
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			log.Tracef("resolved event group %d", g.Id)
			next.ServeHTTP(w, r.WithContext(WithGroup(r.Context(), g)))
		})
	}
}
