package handlers

import (
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/services/storage"
)

// UserPresenter renders users for responses. Stored assignment references are
// resolved against the active file store so clients get a download URL for
// either backend.
type UserPresenter struct {
	files storage.FileStore
}

// NewUserPresenter creates a presenter. A nil store leaves assignmentUrls empty.
func NewUserPresenter(files storage.FileStore) *UserPresenter {
	return &UserPresenter{files: files}
}

func (p *UserPresenter) User(u *model.User) model.UserResponse {
	resp := u.Public()
	p.resolve(&resp)
	return resp
}

func (p *UserPresenter) Students(views []services.StudentView) []services.StudentView {
	for i := range views {
		p.resolve(&views[i].UserResponse)
	}
	return views
}

func (p *UserPresenter) resolve(resp *model.UserResponse) {
	if p == nil || p.files == nil {
		return
	}
	resp.ResolveAssignmentURLs(p.files.URL)
}
