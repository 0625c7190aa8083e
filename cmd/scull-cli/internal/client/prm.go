package internal

// here are small structures with public setters to share between parameter structures

type commonPrm struct {
	cli *Client
}

// SetClient sets the node data API client.
func (x *commonPrm) SetClient(cli *Client) {
	x.cli = cli
}

type devicePrm struct {
	dev int
}

// SetDevice sets the index of the device to operate on.
func (x *devicePrm) SetDevice(dev int) {
	x.dev = dev
}

type tokenPrm struct {
	token string
}

// SetToken sets the token of the session to operate within.
func (x *tokenPrm) SetToken(token string) {
	x.token = token
}
