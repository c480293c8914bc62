package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/kdudkov/goutils/request"

	"github.com/edtools/wingbot/internal/model"
)

const httpTimeout = time.Second * 3

type RemoteAPI struct {
	logger *slog.Logger
	host   string
	client *http.Client
}

type ProjectsPage struct {
	Total    int64               `json:"total"`
	Page     int                 `json:"page"`
	Projects []*model.WebProject `json:"projects"`
}

func NewRemoteAPI(host string) *RemoteAPI {
	return &RemoteAPI{
		host:   host,
		logger: slog.Default().With("logger", "remote_api"),
		client: &http.Client{Transport: &http.Transport{ResponseHeaderTimeout: httpTimeout}},
	}
}

func (r *RemoteAPI) request(path string) *request.Request {
	return request.New(r.client, r.logger).URL(fmt.Sprintf("http://%s%s", r.host, path))
}

func (r *RemoteAPI) GetProjects(ctx context.Context, page int) (*ProjectsPage, error) {
	res := new(ProjectsPage)

	err := r.request("/project").
		Args(map[string]string{"page": strconv.Itoa(page)}).
		GetJSON(ctx, res)

	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *RemoteAPI) GetParticipants(ctx context.Context, id uint) ([]string, error) {
	res := make([]string, 0)

	err := r.request(fmt.Sprintf("/project/%d/participants", id)).GetJSON(ctx, &res)

	if err != nil {
		return nil, err
	}

	return res, nil
}

func (r *RemoteAPI) GetCacheStats(ctx context.Context) (*model.CacheStats, error) {
	res := new(model.CacheStats)

	err := r.request("/cache").GetJSON(ctx, res)

	if err != nil {
		return nil, err
	}

	return res, nil
}
