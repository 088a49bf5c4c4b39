package saleor

import (
	"context"
	"net/url"

	"saleor-stripe-app/internal/model"

	"github.com/pkg/errors"
)

type metadataItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type appResponse struct {
	App *struct {
		ID              string         `json:"id"`
		PrivateMetadata []metadataItem `json:"privateMetadata"`
	} `json:"app"`
}

type mutationErrors struct {
	Errors []graphQLError `json:"errors"`
}

// FetchAppID resolves the id of the app the token belongs to.
func (c *Client) FetchAppID(ctx context.Context, apiURL, token string) (string, error) {
	var resp appResponse
	if err := c.execute(ctx, apiURL, token, fetchAppIDQuery, nil, &resp); err != nil {
		return "", err
	}
	if resp.App == nil || resp.App.ID == "" {
		return "", errors.New("saleor returned no app for the token")
	}
	return resp.App.ID, nil
}

func (c *Client) FetchChannels(ctx context.Context, auth model.AuthData) ([]model.Channel, error) {
	var resp struct {
		Channels []model.Channel `json:"channels"`
	}
	if err := c.execute(ctx, auth.SaleorAPIURL, auth.Token, fetchChannelsQuery, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Channels, nil
}

func (c *Client) FetchPrivateMetadata(ctx context.Context, auth model.AuthData) (map[string]string, error) {
	var resp appResponse
	if err := c.execute(ctx, auth.SaleorAPIURL, auth.Token, fetchPrivateMetadataQuery, nil, &resp); err != nil {
		return nil, err
	}

	items := map[string]string{}
	if resp.App == nil {
		return items, nil
	}
	for _, item := range resp.App.PrivateMetadata {
		items[item.Key] = item.Value
	}
	return items, nil
}

func (c *Client) UpdatePrivateMetadata(ctx context.Context, auth model.AuthData, items map[string]string) error {
	input := make([]metadataItem, 0, len(items))
	for k, v := range items {
		input = append(input, metadataItem{Key: k, Value: v})
	}

	var resp struct {
		UpdatePrivateMetadata *mutationErrors `json:"updatePrivateMetadata"`
	}
	variables := map[string]any{"id": auth.AppID, "input": input}
	if err := c.execute(ctx, auth.SaleorAPIURL, auth.Token, updatePrivateMetadataMutation, variables, &resp); err != nil {
		return err
	}
	return mutationError(resp.UpdatePrivateMetadata)
}

func (c *Client) DeletePrivateMetadata(ctx context.Context, auth model.AuthData, keys []string) error {
	var resp struct {
		DeletePrivateMetadata *mutationErrors `json:"deletePrivateMetadata"`
	}
	variables := map[string]any{"id": auth.AppID, "keys": keys}
	if err := c.execute(ctx, auth.SaleorAPIURL, auth.Token, deletePrivateMetadataMutation, variables, &resp); err != nil {
		return err
	}
	return mutationError(resp.DeletePrivateMetadata)
}

func mutationError(resp *mutationErrors) error {
	if resp == nil || len(resp.Errors) == 0 {
		return nil
	}
	messages := make(GraphQLErrors, 0, len(resp.Errors))
	for _, e := range resp.Errors {
		messages = append(messages, e.Message)
	}
	return messages
}

// Domain is the host of the Saleor API url, used to scope metadata keys.
func Domain(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", errors.Wrapf(err, "parsing saleor api url %q", apiURL)
	}
	if u.Host == "" {
		return "", errors.Errorf("saleor api url %q has no host", apiURL)
	}
	return u.Host, nil
}
