package trafikverket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tagkartan/tagkartan/pkg/util"
)

const defaultEndpoint = "https://api.trafikinfo.trafikverket.se/v2/data.json"

// How far back the bulk queries look. Positions older than the position
// window belong to trains that have left the feed's active set.
const (
	positionWindow     = 15 * time.Minute
	announcementWindow = 60 * time.Minute
)

type Client struct {
	Endpoint string
	APIKey   string

	httpClient *http.Client
}

func NewClient() *Client {
	env := util.GetEnvironmentVariables()

	endpoint := defaultEndpoint
	if env["TAGKARTAN_TRAFIKVERKET_ENDPOINT"] != "" {
		endpoint = env["TAGKARTAN_TRAFIKVERKET_ENDPOINT"]
	}

	return &Client{
		Endpoint: endpoint,
		APIKey:   env["TAGKARTAN_TRAFIKVERKET_API_KEY"],

		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *Client) fetch(ctx context.Context, query string) (*resultSet, error) {
	requestBody := fmt.Sprintf(`<REQUEST><LOGIN authenticationkey="%s" />%s</REQUEST>`, c.APIKey, query)

	req, err := http.NewRequestWithContext(ctx, "POST", c.Endpoint, strings.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trafikverket query returned status %d", resp.StatusCode)
	}

	jsonBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(jsonBytes, &envelope); err != nil {
		return nil, err
	}

	if len(envelope.Response.Result) == 0 {
		return nil, fmt.Errorf("trafikverket response contained no result set")
	}

	return &envelope.Response.Result[0], nil
}

// AllStations returns the full location signature to display name table.
func (c *Client) AllStations(ctx context.Context) ([]TrainStation, error) {
	query := `
		<QUERY objecttype="TrainStation" schemaversion="1.4">
			<INCLUDE>LocationSignature</INCLUDE>
			<INCLUDE>AdvertisedLocationName</INCLUDE>
		</QUERY>`

	result, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	return result.TrainStation, nil
}

// AllPositions returns every recent position report that carries an
// advertised train number.
func (c *Client) AllPositions(ctx context.Context) ([]TrainPosition, error) {
	query := fmt.Sprintf(`
		<QUERY objecttype="TrainPosition" namespace="järnväg.trafikinfo" schemaversion="1.1" limit="3500">
			<FILTER>
				<GT name="TimeStamp" value="%s" />
				<EXISTS name="Train.AdvertisedTrainNumber" value="true" />
			</FILTER>
			<INCLUDE>Train.AdvertisedTrainNumber</INCLUDE>
			<INCLUDE>Position.WGS84</INCLUDE>
			<INCLUDE>Bearing</INCLUDE>
			<INCLUDE>Speed</INCLUDE>
			<INCLUDE>TimeStamp</INCLUDE>
		</QUERY>`,
		time.Now().Add(-positionWindow).UTC().Format(time.RFC3339))

	result, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	return result.TrainPosition, nil
}

// ActiveAnnouncements returns the departure announcements for every train
// active within the last hour. Used by the bulk metadata sweep.
func (c *Client) ActiveAnnouncements(ctx context.Context) ([]TrainAnnouncement, error) {
	query := fmt.Sprintf(`
		<QUERY objecttype="TrainAnnouncement" schemaversion="1.6" limit="5000">
			<FILTER>
				<GT name="TimeAtLocation" value="%s" />
				<EQ name="ActivityType" value="Avgang" />
				<EXISTS name="AdvertisedTrainIdent" value="true" />
			</FILTER>
			<INCLUDE>AdvertisedTrainIdent</INCLUDE>
			<INCLUDE>TechnicalTrainIdent</INCLUDE>
			<INCLUDE>Operator</INCLUDE>
			<INCLUDE>InformationOwner</INCLUDE>
			<INCLUDE>TimeAtLocation</INCLUDE>
			<INCLUDE>AdvertisedTimeAtLocation</INCLUDE>
			<INCLUDE>ProductInformation</INCLUDE>
			<INCLUDE>ToLocation</INCLUDE>
			<INCLUDE>LocationSignature</INCLUDE>
		</QUERY>`,
		time.Now().Add(-announcementWindow).UTC().Format(time.RFC3339))

	result, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	return result.TrainAnnouncement, nil
}

// LatestAnnouncement returns the single most recent announcement for a train
// on today's service date, or nil when the train has none.
func (c *Client) LatestAnnouncement(ctx context.Context, trainIdent string) (*TrainAnnouncement, error) {
	today := time.Now().Format("2006-01-02")

	query := fmt.Sprintf(`
		<QUERY objecttype="TrainAnnouncement" schemaversion="1.6" limit="1" orderby="AdvertisedTimeAtLocation desc">
			<FILTER>
				<EQ name="AdvertisedTrainIdent" value="%s" />
				<EQ name="ScheduledDepartureDateTime" value="%s" />
				<EXISTS name="TimeAtLocation" value="true" />
			</FILTER>
			<INCLUDE>TechnicalTrainIdent</INCLUDE>
			<INCLUDE>Operator</INCLUDE>
			<INCLUDE>InformationOwner</INCLUDE>
			<INCLUDE>ProductInformation</INCLUDE>
			<INCLUDE>ToLocation</INCLUDE>
			<INCLUDE>LocationSignature</INCLUDE>
			<INCLUDE>TimeAtLocation</INCLUDE>
			<INCLUDE>AdvertisedTimeAtLocation</INCLUDE>
		</QUERY>`,
		trainIdent, today)

	result, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(result.TrainAnnouncement) == 0 {
		return nil, nil
	}

	return &result.TrainAnnouncement[0], nil
}

// UpcomingAnnouncements returns up to 3 future announcements for a train,
// ordered by advertised time ascending. Used for the next stop lookup.
func (c *Client) UpcomingAnnouncements(ctx context.Context, trainIdent string) ([]TrainAnnouncement, error) {
	query := fmt.Sprintf(`
		<QUERY objecttype="TrainAnnouncement" schemaversion="1.6" limit="3" orderby="AdvertisedTimeAtLocation asc">
			<FILTER>
				<EQ name="AdvertisedTrainIdent" value="%s" />
				<GT name="AdvertisedTimeAtLocation" value="%s" />
			</FILTER>
			<INCLUDE>LocationSignature</INCLUDE>
			<INCLUDE>AdvertisedTimeAtLocation</INCLUDE>
			<INCLUDE>EstimatedTimeAtLocation</INCLUDE>
			<INCLUDE>TrackAtLocation</INCLUDE>
			<INCLUDE>ActivityType</INCLUDE>
		</QUERY>`,
		trainIdent, time.Now().UTC().Format(time.RFC3339))

	result, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	return result.TrainAnnouncement, nil
}

// RailCrossings returns every level crossing currently in operation.
func (c *Client) RailCrossings(ctx context.Context) ([]RailCrossing, error) {
	query := `
		<QUERY objecttype="RailCrossing" schemaversion="1.5">
			<FILTER>
				<EQ name="OperatingMode" value="I drift" />
			</FILTER>
			<INCLUDE>LevelCrossingId</INCLUDE>
			<INCLUDE>Geometry.WGS84</INCLUDE>
			<INCLUDE>RoadName</INCLUDE>
			<INCLUDE>NumberOfTracks</INCLUDE>
			<INCLUDE>OperatingMode</INCLUDE>
		</QUERY>`

	result, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}

	return result.RailCrossing, nil
}
