package live

// ClientScript applies patches pushed over /ws. Interpolated runs are found
// by their <!--z:ID--> marker and replaced up to the closing <!--/z-->;
// element bindings are found by data-z.
const ClientScript = `
<script>
(function() {
    'use strict';

    function findMarker(id) {
        var walker = document.createTreeWalker(document.body, NodeFilter.SHOW_COMMENT);
        var want = 'z:' + id;
        while (walker.nextNode()) {
            if (walker.currentNode.data === want) {
                return walker.currentNode;
            }
        }
        return null;
    }

    function replaceRun(marker, value) {
        var node = marker.nextSibling;
        while (node && !(node.nodeType === Node.COMMENT_NODE && node.data === '/z')) {
            var next = node.nextSibling;
            node.parentNode.removeChild(node);
            node = next;
        }
        marker.parentNode.insertBefore(document.createTextNode(value), node);
    }

    function apply(p) {
        var el = document.querySelector('[data-z~="' + p.id + '"]');
        if (el) {
            if (p.kind === 'html') {
                el.innerHTML = p.value;
            } else {
                el.textContent = p.value;
            }
            return;
        }
        var marker = findMarker(p.id);
        if (marker) {
            replaceRun(marker, p.value);
        }
    }

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            if (msg.type === 'patch' && msg.patch) {
                apply(msg.patch);
            }
        };

        // The page is rendered from current state, so reloading resyncs.
        ws.onclose = function() {
            setTimeout(function() {
                location.reload();
            }, 1000);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
