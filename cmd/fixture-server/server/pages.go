package server

// Pages maps request paths to the fixture pages served by the server.
var Pages = map[string]string{
	"/":                       indexPage,
	"/grid.html":              gridPage,
	"/console.html":           consolePage,
	"/frames/frame.html":      framePage,
	"/frames/one-frame.html":  oneFramePage,
	"/frames/two-frames.html": twoFramesPage,
	"/webrtc.html":            webrtcPage,
}

const indexPage = `<!DOCTYPE html>
<html>
<head><title>Fixture Server</title></head>
<body>
<ul>
  <li><a href="/grid.html">grid</a></li>
  <li><a href="/console.html">console</a></li>
  <li><a href="/frames/one-frame.html">one frame</a></li>
  <li><a href="/frames/two-frames.html">two frames</a></li>
  <li><a href="/webrtc.html">webrtc</a></li>
</ul>
</body>
</html>`

// gridPage renders a deterministic grid of coloured boxes for screenshot goldens.
const gridPage = `<!DOCTYPE html>
<html>
<head>
<title>Grid</title>
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { background: #fff; }
  .box {
    float: left;
    width: 50px;
    height: 50px;
    margin: 0 2px 2px 0;
    border: 2px solid #000;
    font: 10px monospace;
  }
</style>
</head>
<body>
<script>
  const colors = ['#d11', '#1d1', '#11d', '#dd1', '#1dd', '#d1d'];
  for (let i = 0; i < 120; i++) {
    const box = document.createElement('div');
    box.className = 'box';
    box.style.background = colors[i % colors.length];
    document.body.appendChild(box);
  }
</script>
</body>
</html>`

const consolePage = `<!DOCTYPE html>
<html>
<head><title>Console</title></head>
<body>
<script>
  window.addEventListener('load', () => {
    console.log('hello', 5);
    console.warn('careful');
  });
</script>
</body>
</html>`

const framePage = `<!DOCTYPE html>
<html>
<head><title>Frame</title></head>
<body><div>Hi, I'm frame</div></body>
</html>`

const oneFramePage = `<!DOCTYPE html>
<html>
<head><title>One frame</title></head>
<body><iframe src="./frame.html"></iframe></body>
</html>`

const twoFramesPage = `<!DOCTYPE html>
<html>
<head><title>Two frames</title></head>
<body>
<iframe name="uno" src="./frame.html"></iframe>
<iframe name="dos" src="./frame.html"></iframe>
</body>
</html>`

// webrtcPage exposes startCall(), which sends fake camera video to /offer.
// Chrome must be launched with --use-fake-device-for-media-stream.
const webrtcPage = `<!DOCTYPE html>
<html>
<head><title>WebRTC</title></head>
<body>
<div id="status">idle</div>
<script>
  window.pc = null;

  async function startCall() {
    const stream = await navigator.mediaDevices.getUserMedia({
      video: { width: 320, height: 240, frameRate: 15 },
      audio: false
    });

    window.pc = new RTCPeerConnection({ iceServers: [] });
    stream.getTracks().forEach(track => window.pc.addTrack(track, stream));
    window.pc.onconnectionstatechange = () => {
      document.getElementById('status').textContent = window.pc.connectionState;
    };

    const offer = await window.pc.createOffer();
    await window.pc.setLocalDescription(offer);

    await new Promise(resolve => {
      if (window.pc.iceGatheringState === 'complete') {
        resolve();
        return;
      }
      window.pc.onicecandidate = e => {
        if (e.candidate === null) resolve();
      };
    });

    const response = await fetch('/offer', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(window.pc.localDescription)
    });
    if (!response.ok) {
      throw new Error('Server returned ' + response.status);
    }
    await window.pc.setRemoteDescription(await response.json());
    return 'offered';
  }

  function stopCall() {
    if (window.pc) {
      window.pc.close();
      window.pc = null;
    }
  }
</script>
</body>
</html>`
