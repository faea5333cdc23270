package aws

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSES struct{ mock.Mock }

func (m *mockSES) SendEmail(ctx context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*ses.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSNS struct{ mock.Mock }

func (m *mockSNS) Publish(ctx context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, in)
	if out := args.Get(0); out != nil {
		return out.(*sns.PublishOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESClient_SendText(t *testing.T) {
	api := &mockSES{}
	api.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return aws.ToString(in.Source) == "activities@mergington.edu" &&
			len(in.Destination.ToAddresses) == 1 &&
			in.Destination.ToAddresses[0] == "emma@mergington.edu" &&
			aws.ToString(in.Message.Subject.Data) == "Chess Club"
	})).Return(&ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil)

	client := NewSESClientFromAPI(api, "activities@mergington.edu")
	id, err := client.SendText(context.Background(), "emma@mergington.edu", "Chess Club", "hello")
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)
	api.AssertExpectations(t)
}

func TestSESClient_SendTextError(t *testing.T) {
	api := &mockSES{}
	api.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	client := NewSESClientFromAPI(api, "activities@mergington.edu")
	_, err := client.SendText(context.Background(), "emma@mergington.edu", "s", "b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestSNSClient_Publish(t *testing.T) {
	api := &mockSNS{}
	api.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		attr, ok := in.MessageAttributes["eventType"]
		return aws.ToString(in.TopicArn) == "arn:aws:sns:us-east-1:123456789012:registrations" &&
			aws.ToString(in.Message) == `{"a":1}` &&
			ok && aws.ToString(attr.StringValue) == "participant.signed_up"
	})).Return(&sns.PublishOutput{MessageId: aws.String("sns-1")}, nil)

	client := NewSNSClientFromAPI(api, "arn:aws:sns:us-east-1:123456789012:registrations")
	id, err := client.Publish(context.Background(), `{"a":1}`, map[string]string{"eventType": "participant.signed_up"})
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)
	api.AssertExpectations(t)
}
